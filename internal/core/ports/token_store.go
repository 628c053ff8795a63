package ports

// TokenStore persists the opaque upstream token for one browser across
// page loads.
type TokenStore interface {
	Load() (string, bool)
	Save(token string) error
	Clear() error
}
