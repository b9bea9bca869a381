package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/notice"
)

type fakeIdentity struct {
	mu          sync.Mutex
	seq         uint64
	sessions    map[string]*Session
	subscribers []func(Event)

	currentErr error
	signInErr  error
	signOutErr error
	signedOut  []string
	lookups    int
	// announceEarly delivers the sign-in event before SignIn returns.
	announceEarly bool
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{sessions: make(map[string]*Session)}
}

func (f *fakeIdentity) issue(email string) *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := "token-" + email
	s := &Session{
		AccessToken: token,
		TokenID:     "jti-" + email,
		User:        Identity{UserID: "user-" + email, Email: email, FullName: "Ada Obi"},
		Seq:         f.seq,
	}
	f.sessions[token] = s
	return s
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	return f.issue(email), nil
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	sess := f.issue(email)
	if f.announceEarly {
		f.publish(Event{Kind: EventSignedIn, TokenID: sess.TokenID, Seq: sess.Seq, Session: sess})
	}
	return sess, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.signedOut = append(f.signedOut, token)
	delete(f.sessions, token)
	return nil
}

func (f *fakeIdentity) CurrentSession(ctx context.Context, token string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.sessions[token], nil
}

func (f *fakeIdentity) Subscribe(fn func(Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
	return func() {}
}

func (f *fakeIdentity) publish(ev Event) {
	f.mu.Lock()
	subs := append([]func(Event){}, f.subscribers...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func TestDecide(t *testing.T) {
	pending := State{Status: StatusPending}
	anon := State{Status: StatusAnonymous}
	authed := State{Status: StatusAuthenticated, Identity: &Identity{UserID: "u1"}}

	tests := []struct {
		name   string
		state  State
		access Access
		want   Decision
	}{
		{"protected pending", pending, AccessProtected, Decision{Outcome: OutcomeLoading}},
		{"protected anonymous", anon, AccessProtected, Decision{Outcome: OutcomeRedirect, Target: "/auth?from=%2Fcheckout"}},
		{"protected authenticated", authed, AccessProtected, Decision{Outcome: OutcomeRender}},
		{"public-only pending", pending, AccessPublicOnly, Decision{Outcome: OutcomeLoading}},
		{"public-only authenticated", authed, AccessPublicOnly, Decision{Outcome: OutcomeRedirect, Target: "/dashboard"}},
		{"public-only anonymous", anon, AccessPublicOnly, Decision{Outcome: OutcomeRender}},
		{"public pending", pending, AccessPublic, Decision{Outcome: OutcomeRender}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state, tt.access, "/checkout"))
		})
	}
}

func TestProvider_StartsPending(t *testing.T) {
	p := NewProvider(newFakeIdentity(), "", nil)
	assert.Equal(t, StatusPending, p.State().Status)
	assert.Equal(t, OutcomeLoading, Decide(p.State(), AccessProtected, "/dashboard").Outcome)
}

func TestProvider_Resolve_NoToken_Anonymous(t *testing.T) {
	id := newFakeIdentity()
	p := NewProvider(id, "", nil)

	require.NoError(t, p.Resolve(context.Background()))

	assert.Equal(t, StatusAnonymous, p.State().Status)
	d := Decide(p.State(), AccessProtected, "")
	assert.Equal(t, Decision{Outcome: OutcomeRedirect, Target: SignInPath}, d)
}

func TestProvider_Resolve_RememberedToken_Authenticated(t *testing.T) {
	id := newFakeIdentity()
	sess := id.issue("ada@example.com")
	p := NewProvider(id, sess.AccessToken, nil)

	require.NoError(t, p.Resolve(context.Background()))

	st := p.State()
	assert.Equal(t, StatusAuthenticated, st.Status)
	assert.Equal(t, "ada@example.com", st.Identity.Email)
	assert.False(t, st.Optimistic)
}

func TestProvider_Resolve_UnknownToken_Anonymous(t *testing.T) {
	p := NewProvider(newFakeIdentity(), "stale-token", nil)

	require.NoError(t, p.Resolve(context.Background()))

	assert.Equal(t, StatusAnonymous, p.State().Status)
	assert.Empty(t, p.Token())
}

func TestProvider_Resolve_FailureStaysPending(t *testing.T) {
	id := newFakeIdentity()
	sess := id.issue("ada@example.com")
	id.currentErr = errors.New("identity service unavailable")
	p := NewProvider(id, sess.AccessToken, nil)

	require.Error(t, p.Resolve(context.Background()))
	assert.Equal(t, StatusPending, p.State().Status)
	assert.Equal(t, OutcomeLoading, Decide(p.State(), AccessProtected, "").Outcome)

	id.currentErr = nil
	require.NoError(t, p.Resolve(context.Background()))
	assert.Equal(t, StatusAuthenticated, p.State().Status)
}

func TestProvider_Resolve_OnlyOnce(t *testing.T) {
	id := newFakeIdentity()
	sess := id.issue("ada@example.com")
	p := NewProvider(id, sess.AccessToken, nil)

	require.NoError(t, p.Resolve(context.Background()))
	require.NoError(t, p.Resolve(context.Background()))

	assert.Equal(t, 1, id.lookups)
}

func TestProvider_SignIn_AuthenticatedBeforeNotification(t *testing.T) {
	id := newFakeIdentity()
	q := &notice.Queue{}
	p := NewProvider(id, "", q)
	require.NoError(t, p.Resolve(context.Background()))

	require.NoError(t, p.SignIn(context.Background(), "ada@example.com", "secret123"))

	st := p.State()
	assert.Equal(t, StatusAuthenticated, st.Status)
	assert.True(t, st.Optimistic)
	assert.Equal(t, "token-ada@example.com", p.Token())
	assert.Equal(t, "Welcome back!", q.Drain()[0].Message)
}

func TestProvider_SignIn_NotificationSupersedesOptimisticState(t *testing.T) {
	id := newFakeIdentity()
	p := NewProvider(id, "", nil)
	require.NoError(t, p.Resolve(context.Background()))
	require.NoError(t, p.SignIn(context.Background(), "ada@example.com", "secret123"))
	before := p.State()

	sess := id.sessions["token-ada@example.com"]
	id.publish(Event{Kind: EventSignedIn, TokenID: sess.TokenID, Seq: sess.Seq, Session: sess})

	after := p.State()
	assert.Equal(t, StatusAuthenticated, after.Status)
	assert.Equal(t, before.Seq, after.Seq)
	assert.False(t, after.Optimistic)
}

func TestProvider_SignIn_NotificationBeforeReturnConfirms(t *testing.T) {
	id := newFakeIdentity()
	id.announceEarly = true
	p := NewProvider(id, "", nil)
	require.NoError(t, p.Resolve(context.Background()))

	require.NoError(t, p.SignIn(context.Background(), "ada@example.com", "secret123"))

	st := p.State()
	assert.Equal(t, StatusAuthenticated, st.Status)
	assert.False(t, st.Optimistic)
	assert.Equal(t, "token-ada@example.com", p.Token())
	assert.Empty(t, p.early)
}

func TestProvider_SignIn_OtherBrowsersEarlyEventsDoNotConfirm(t *testing.T) {
	id := newFakeIdentity()
	p := NewProvider(id, "", nil)
	require.NoError(t, p.Resolve(context.Background()))

	for i := 0; i < maxEarlyEvents+4; i++ {
		other := id.issue("bola@example.com")
		id.publish(Event{Kind: EventSignedIn, TokenID: other.TokenID + "-" + string(rune('a'+i)), Seq: other.Seq, Session: other})
	}
	assert.Len(t, p.early, maxEarlyEvents)

	require.NoError(t, p.SignIn(context.Background(), "ada@example.com", "secret123"))

	st := p.State()
	assert.Equal(t, StatusAuthenticated, st.Status)
	assert.Equal(t, "ada@example.com", st.Identity.Email)
	assert.True(t, st.Optimistic)
	assert.Empty(t, p.early)
}

func TestProvider_SignIn_Failure(t *testing.T) {
	id := newFakeIdentity()
	id.signInErr = errors.New("invalid login credentials")
	q := &notice.Queue{}
	p := NewProvider(id, "", q)
	require.NoError(t, p.Resolve(context.Background()))

	err := p.SignIn(context.Background(), "ada@example.com", "wrong")

	require.Error(t, err)
	assert.Equal(t, StatusAnonymous, p.State().Status)
	got := q.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, notice.Error, got[0].Level)
}

func TestProvider_SignUp_Authenticated(t *testing.T) {
	p := NewProvider(newFakeIdentity(), "", nil)
	require.NoError(t, p.Resolve(context.Background()))

	require.NoError(t, p.SignUp(context.Background(), "ada@example.com", "secret123", "Ada Obi"))

	assert.Equal(t, StatusAuthenticated, p.State().Status)
}

func TestProvider_SignOut(t *testing.T) {
	id := newFakeIdentity()
	p := NewProvider(id, "", nil)
	require.NoError(t, p.Resolve(context.Background()))
	require.NoError(t, p.SignIn(context.Background(), "ada@example.com", "secret123"))

	require.NoError(t, p.SignOut(context.Background()))

	assert.Equal(t, StatusAnonymous, p.State().Status)
	assert.Empty(t, p.Token())
	assert.Equal(t, []string{"token-ada@example.com"}, id.signedOut)
}

func TestProvider_SignOut_FailureKeepsAnonymous(t *testing.T) {
	id := newFakeIdentity()
	q := &notice.Queue{}
	p := NewProvider(id, "", q)
	require.NoError(t, p.Resolve(context.Background()))
	require.NoError(t, p.SignIn(context.Background(), "ada@example.com", "secret123"))
	q.Drain()
	id.signOutErr = errors.New("network down")

	err := p.SignOut(context.Background())

	require.ErrorIs(t, err, ErrSignOutIncomplete)
	assert.Equal(t, StatusAnonymous, p.State().Status)
	assert.Equal(t, notice.Warning, q.Drain()[0].Level)
}

func TestProvider_LateSignInNotificationAfterSignOut_IsDropped(t *testing.T) {
	id := newFakeIdentity()
	p := NewProvider(id, "", nil)
	require.NoError(t, p.Resolve(context.Background()))
	require.NoError(t, p.SignIn(context.Background(), "ada@example.com", "secret123"))
	sess := id.sessions["token-ada@example.com"]
	require.NoError(t, p.SignOut(context.Background()))

	id.publish(Event{Kind: EventSignedIn, TokenID: sess.TokenID, Seq: sess.Seq, Session: sess})

	assert.Equal(t, StatusAnonymous, p.State().Status)
}

func TestProvider_SignedOutElsewhere(t *testing.T) {
	id := newFakeIdentity()
	sess := id.issue("ada@example.com")
	p := NewProvider(id, sess.AccessToken, nil)
	require.NoError(t, p.Resolve(context.Background()))

	id.publish(Event{Kind: EventSignedOut, TokenID: sess.TokenID, Seq: sess.Seq + 1})

	assert.Equal(t, StatusAnonymous, p.State().Status)
	assert.Empty(t, p.Token())
}

func TestProvider_IgnoresOtherBrowsersEvents(t *testing.T) {
	id := newFakeIdentity()
	mine := id.issue("ada@example.com")
	other := id.issue("bola@example.com")
	p := NewProvider(id, mine.AccessToken, nil)
	require.NoError(t, p.Resolve(context.Background()))

	id.publish(Event{Kind: EventSignedOut, TokenID: other.TokenID, Seq: other.Seq + 1})

	assert.Equal(t, StatusAuthenticated, p.State().Status)
}

func TestProvider_Verify_InvalidSession(t *testing.T) {
	id := newFakeIdentity()
	sess := id.issue("ada@example.com")
	p := NewProvider(id, sess.AccessToken, nil)
	require.NoError(t, p.Resolve(context.Background()))
	delete(id.sessions, sess.AccessToken)

	_, err := p.Verify(context.Background())

	require.ErrorIs(t, err, ErrSessionInvalid)
	assert.Equal(t, StatusAnonymous, p.State().Status)
}

func TestProvider_Verify_NotSignedIn(t *testing.T) {
	p := NewProvider(newFakeIdentity(), "", nil)
	require.NoError(t, p.Resolve(context.Background()))

	_, err := p.Verify(context.Background())

	require.ErrorIs(t, err, ErrNotAuthenticated)
}
