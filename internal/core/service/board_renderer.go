package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
	"github.com/mergington/activity-board/internal/pkg/metrics"
)

// BoardRenderer fetches the catalog and builds the board view.
type BoardRenderer struct {
	api ports.BoardAPI
	log zerolog.Logger
}

func NewBoardRenderer(api ports.BoardAPI, log zerolog.Logger) *BoardRenderer {
	return &BoardRenderer{api: api, log: log}
}

// Refresh issues one unauthenticated catalog fetch and returns a complete
// board. Any failure yields Board{Failed: true}; there is no retry.
func (r *BoardRenderer) Refresh(ctx context.Context, vis domain.Visibility) domain.Board {
	activities, err := r.api.ListActivities(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("error fetching activities")
		metrics.BoardRefreshesTotal.WithLabelValues("failed").Inc()
		return domain.Board{Failed: true}
	}
	metrics.BoardRefreshesTotal.WithLabelValues("ok").Inc()
	return BuildBoard(activities, vis)
}

// BuildBoard maps activities to cards and options. Rows get a removal control
// only when vis allows it.
func BuildBoard(activities []domain.Activity, vis domain.Visibility) domain.Board {
	board := domain.Board{
		Cards:   make([]domain.Card, 0, len(activities)),
		Options: make([]string, 0, len(activities)),
	}
	for _, a := range activities {
		rows := make([]domain.ParticipantRow, 0, len(a.Participants))
		for _, email := range a.Participants {
			rows = append(rows, domain.ParticipantRow{
				Activity:  a.Name,
				Email:     email,
				Removable: vis.RemovalControls,
			})
		}
		board.Cards = append(board.Cards, domain.Card{
			Name:         a.Name,
			Description:  a.Description,
			Schedule:     a.Schedule,
			SpotsLeft:    a.SpotsLeft(),
			Participants: rows,
		})
		board.Options = append(board.Options, a.Name)
	}
	return board
}
