package domain

// Activity is one entry of the upstream catalog. Participants keep the order
// the server reports them in.
type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft is max_participants minus the participant count. It is never
// clamped, so an over-subscribed activity reports a negative value.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}
