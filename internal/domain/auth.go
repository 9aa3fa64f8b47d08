package domain

// Organizer is the authenticated caller of organizer endpoints, taken from the auth provider's token.
type Organizer struct {
	ID    string
	Email string
}

// TokenVerifier verifies a bearer token issued by the hosted auth provider.
type TokenVerifier interface {
	Verify(token string) (*Organizer, error)
}
