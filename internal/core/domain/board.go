package domain

// Board is the rendered state of the activity list and selection control.
// It is rebuilt from scratch on every refresh.
type Board struct {
	Cards   []Card
	Options []string
	// Failed replaces the list with the static failure notice.
	Failed bool
}

// Card is one activity in the list view.
type Card struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int
	Participants []ParticipantRow
}

// ParticipantRow is one participant line. Removable rows render a removal
// control addressed by Activity and Email.
type ParticipantRow struct {
	Activity  string
	Email     string
	Removable bool
}

// HasRemovalControls reports whether any row carries a removal control.
func (b Board) HasRemovalControls() bool {
	for _, c := range b.Cards {
		for _, p := range c.Participants {
			if p.Removable {
				return true
			}
		}
	}
	return false
}
