package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/notice"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
)

type stubIdentity struct {
	subscribed   int
	unsubscribed int
}

func (s *stubIdentity) SignUp(ctx context.Context, email, password, fullName string) (*session.Session, error) {
	return nil, nil
}

func (s *stubIdentity) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	return nil, nil
}

func (s *stubIdentity) SignOut(ctx context.Context, token string) error { return nil }

func (s *stubIdentity) CurrentSession(ctx context.Context, token string) (*session.Session, error) {
	return nil, nil
}

func (s *stubIdentity) Subscribe(fn func(session.Event)) func() {
	s.subscribed++
	return func() { s.unsubscribed++ }
}

func TestGetReturnsSameClientPerBrowser(t *testing.T) {
	r := NewRegistry(&stubIdentity{}, time.Hour)

	a := r.Get("browser-a", "")
	assert.Same(t, a, r.Get("browser-a", ""))
	assert.NotSame(t, a, r.Get("browser-b", ""))
	assert.Equal(t, 2, r.Len())
}

func TestClientsDoNotShareCarts(t *testing.T) {
	r := NewRegistry(&stubIdentity{}, time.Hour)
	a := r.Get("browser-a", "")
	b := r.Get("browser-b", "")

	a.Cart.AddItem(models.Dish{ID: "5", Name: "Suya", Price: 1500})

	assert.Equal(t, 1, a.Cart.TotalItemCount())
	assert.True(t, b.Cart.IsEmpty())
	assert.Equal(t, []notice.Notice{{Level: notice.Success, Message: "Added Suya to cart"}}, a.Notices.Drain())
	assert.Empty(t, b.Notices.Drain())
}

func TestNewClientStartsPending(t *testing.T) {
	r := NewRegistry(&stubIdentity{}, time.Hour)
	c := r.Get("browser-a", "")
	assert.Equal(t, session.StatusPending, c.Session.State().Status)

	require.NoError(t, c.Session.Resolve(context.Background()))
	assert.Equal(t, session.StatusAnonymous, c.Session.State().Status)
}

func TestSweepEvictsIdleClients(t *testing.T) {
	id := &stubIdentity{}
	r := NewRegistry(id, time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	stale := r.Get("stale", "")
	require.NoError(t, stale.Session.Resolve(context.Background()))
	r.Get("fresh", "")

	now = now.Add(45 * time.Minute)
	r.Get("fresh", "")
	now = now.Add(30 * time.Minute)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, id.unsubscribed)
	assert.NotSame(t, stale, r.Get("stale", ""))
}

func TestRunClosesClientsOnShutdown(t *testing.T) {
	id := &stubIdentity{}
	r := NewRegistry(id, time.Hour)
	c := r.Get("browser-a", "")
	require.NoError(t, c.Session.Resolve(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Minute)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, id.unsubscribed)
}
