package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/notice"
)

var (
	// ErrSignOutIncomplete means the browser is signed out locally but the
	// identity service could not revoke the token.
	ErrSignOutIncomplete = errors.New("signed out locally but the session could not be revoked")
	ErrSessionInvalid    = errors.New("session is no longer valid")
	ErrNotAuthenticated  = errors.New("not signed in")
)

// Provider owns the session state of one browser session and keeps it in
// step with the identity service.
type Provider struct {
	client   IdentityClient
	notifier notice.Notifier
	gate     *Gate

	resolveMu   sync.Mutex
	unsubscribe func()

	mu      sync.Mutex
	token   string
	tokenID string
	// early holds sign-in events that arrived before the sign-in call that
	// caused them returned; adopt replays the one for its token.
	early []Event
}

const maxEarlyEvents = 16

// NewProvider starts in Pending. token is the access token remembered by the
// browser from an earlier visit, or empty.
func NewProvider(client IdentityClient, token string, n notice.Notifier) *Provider {
	if n == nil {
		n = notice.Discard
	}
	return &Provider{
		client:   client,
		notifier: n,
		gate:     NewGate(),
		token:    token,
	}
}

func (p *Provider) State() State { return p.gate.State() }

// Token is the access token the browser should remember.
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Resolve looks up the remembered session once. While it fails the gate
// stays Pending and a later call tries again.
func (p *Provider) Resolve(ctx context.Context) error {
	p.resolveMu.Lock()
	defer p.resolveMu.Unlock()

	if p.gate.State().Status != StatusPending {
		return nil
	}
	if p.unsubscribe == nil {
		p.unsubscribe = p.client.Subscribe(p.handle)
	}

	token := p.Token()
	if token == "" {
		p.gate.resolve(State{Status: StatusAnonymous})
		return nil
	}

	sess, err := p.client.CurrentSession(ctx, token)
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if sess == nil {
		p.token, p.tokenID = "", ""
		p.gate.resolve(State{Status: StatusAnonymous})
		return nil
	}
	p.tokenID = sess.TokenID
	id := sess.User
	p.gate.resolve(State{Status: StatusAuthenticated, Identity: &id, Seq: sess.Seq})
	return nil
}

func (p *Provider) adopt(sess *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token, p.tokenID = sess.AccessToken, sess.TokenID
	id := sess.User
	p.gate.setOptimistic(State{Status: StatusAuthenticated, Identity: &id, Seq: sess.Seq})

	early := p.early
	p.early = nil
	for _, ev := range early {
		if ev.TokenID == sess.TokenID {
			p.gate.reconcile(ev)
		}
	}
}

// SignUp creates an account and, on success, marks the browser
// Authenticated before returning.
func (p *Provider) SignUp(ctx context.Context, email, password, fullName string) error {
	sess, err := p.client.SignUp(ctx, email, password, fullName)
	if err != nil {
		p.notifier.Notify(notice.Notice{Level: notice.Error, Message: err.Error()})
		return err
	}
	if sess != nil {
		p.adopt(sess)
	}
	p.notifier.Notify(notice.Notice{Level: notice.Success, Message: "Account created successfully!"})
	return nil
}

// SignIn marks the browser Authenticated as soon as the credentials are
// accepted.
func (p *Provider) SignIn(ctx context.Context, email, password string) error {
	sess, err := p.client.SignIn(ctx, email, password)
	if err != nil {
		p.notifier.Notify(notice.Notice{Level: notice.Error, Message: err.Error()})
		return err
	}
	if sess != nil {
		p.adopt(sess)
	}
	p.notifier.Notify(notice.Notice{Level: notice.Success, Message: "Welcome back!"})
	return nil
}

// SignOut marks the browser Anonymous first and then asks the identity
// service to revoke the token. A failed revocation is reported with
// ErrSignOutIncomplete but the local state is kept.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.token
	p.token = ""
	seq := p.gate.State().Seq
	p.gate.setOptimistic(State{Status: StatusAnonymous, Seq: seq})
	p.mu.Unlock()

	if token == "" {
		p.notifier.Notify(notice.Notice{Level: notice.Success, Message: "Signed out successfully"})
		return nil
	}
	if err := p.client.SignOut(ctx, token); err != nil {
		slog.Warn("Session revocation failed after local sign-out", "error", err)
		p.notifier.Notify(notice.Notice{Level: notice.Warning, Message: "You are signed out on this device, but we could not end your session everywhere. Please try signing out again later."})
		return fmt.Errorf("%w: %v", ErrSignOutIncomplete, err)
	}
	p.notifier.Notify(notice.Notice{Level: notice.Success, Message: "Signed out successfully"})
	return nil
}

// Verify asks the identity service whether the signed-in session is still
// valid. An invalid session moves the gate to Anonymous.
func (p *Provider) Verify(ctx context.Context) (Identity, error) {
	st := p.gate.State()
	token := p.Token()
	if st.Status != StatusAuthenticated || token == "" {
		return Identity{}, ErrNotAuthenticated
	}
	sess, err := p.client.CurrentSession(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("verify session: %w", err)
	}
	if sess == nil {
		p.mu.Lock()
		p.token, p.tokenID = "", ""
		p.gate.force(State{Status: StatusAnonymous, Seq: st.Seq})
		p.mu.Unlock()
		return Identity{}, ErrSessionInvalid
	}
	return sess.User, nil
}

func (p *Provider) handle(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev.TokenID == "" {
		return
	}
	if ev.TokenID != p.tokenID {
		if ev.Kind == EventSignedIn {
			p.stashEarly(ev)
		}
		return
	}
	if p.gate.reconcile(ev) && ev.Kind == EventSignedOut {
		p.token = ""
	}
}

func (p *Provider) stashEarly(ev Event) {
	if len(p.early) == maxEarlyEvents {
		p.early = append(p.early[:0], p.early[1:]...)
	}
	p.early = append(p.early, ev)
}

// Close stops listening for change notifications.
func (p *Provider) Close() {
	p.resolveMu.Lock()
	defer p.resolveMu.Unlock()
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}
