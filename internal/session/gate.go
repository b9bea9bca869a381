package session

import (
	"net/url"
	"sync"
)

type Status int

const (
	StatusPending Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	}
	return "unknown"
}

type Identity struct {
	UserID   string
	Email    string
	FullName string
}

// State is a snapshot of the gate. Seq is the identity event the state
// reflects; Optimistic marks a state set from a local result that the
// matching change notification has not confirmed yet.
type State struct {
	Status     Status
	Identity   *Identity
	Seq        uint64
	Optimistic bool
}

func (s State) Authenticated() bool { return s.Status == StatusAuthenticated }

// Gate is the Pending -> Authenticated | Anonymous state machine for one
// browser session.
type Gate struct {
	mu    sync.Mutex
	state State
}

func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// resolve ends the Pending state with the outcome of the startup lookup. A
// local sign-in that finished first is kept.
func (g *Gate) resolve(st State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Status != StatusPending {
		return
	}
	g.state = st
}

// setOptimistic applies a local result immediately.
func (g *Gate) setOptimistic(st State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st.Optimistic = true
	g.state = st
}

// force replaces the state with an authoritative answer from the identity
// collaborator outside the notification stream.
func (g *Gate) force(st State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st.Optimistic = false
	g.state = st
}

// reconcile applies a change notification. A newer event always wins. An
// event with the same sequence replaces an optimistic state for the same
// transition, so the pair counts as one transition. Anything else is stale.
// While Pending the startup lookup is authoritative and events are ignored.
func (g *Gate) reconcile(ev Event) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	cur := g.state
	if cur.Status == StatusPending {
		return false
	}
	next := ev.state()
	switch {
	case ev.Seq > cur.Seq:
	case ev.Seq == cur.Seq && cur.Optimistic && next.Status == cur.Status:
	default:
		return false
	}
	g.state = next
	return true
}

// Access describes who may see a page.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPublicOnly
)

type Outcome int

const (
	OutcomeRender Outcome = iota
	OutcomeLoading
	OutcomeRedirect
)

type Decision struct {
	Outcome Outcome
	Target  string
}

const (
	SignInPath  = "/auth"
	LandingPath = "/dashboard"
)

// Decide maps a state and a page's access rule to what the page must do.
// Nothing is redirected while the state is Pending.
func Decide(st State, access Access, from string) Decision {
	if access == AccessPublic {
		return Decision{Outcome: OutcomeRender}
	}
	switch st.Status {
	case StatusPending:
		return Decision{Outcome: OutcomeLoading}
	case StatusAnonymous:
		if access == AccessProtected {
			target := SignInPath
			if from != "" {
				target += "?from=" + url.QueryEscape(from)
			}
			return Decision{Outcome: OutcomeRedirect, Target: target}
		}
	case StatusAuthenticated:
		if access == AccessPublicOnly {
			return Decision{Outcome: OutcomeRedirect, Target: LandingPath}
		}
	}
	return Decision{Outcome: OutcomeRender}
}
