package session

import (
	"context"
	"time"
)

// Session is an established identity as issued by the identity service.
type Session struct {
	AccessToken string
	TokenID     string
	User        Identity
	ExpiresAt   time.Time
	Seq         uint64
}

type EventKind int

const (
	EventSignedIn EventKind = iota + 1
	EventSignedOut
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	}
	return "unknown"
}

// Event is a change notification from the identity service. Seq increases
// with every event the service publishes.
type Event struct {
	Kind    EventKind
	TokenID string
	Seq     uint64
	Session *Session
}

func (e Event) state() State {
	if e.Kind == EventSignedIn && e.Session != nil {
		id := e.Session.User
		return State{Status: StatusAuthenticated, Identity: &id, Seq: e.Seq}
	}
	return State{Status: StatusAnonymous, Seq: e.Seq}
}

// IdentityClient is the identity collaborator the provider depends on.
// CurrentSession returns nil and no error when the token is absent, expired
// or revoked.
type IdentityClient interface {
	SignUp(ctx context.Context, email, password, fullName string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentSession(ctx context.Context, accessToken string) (*Session, error)
	Subscribe(fn func(Event)) (unsubscribe func())
}
