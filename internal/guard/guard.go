package guard

import "sync"

// View is what a mounted guard renders for the current state.
type View int

const (
	ViewLoading View = iota
	ViewNothing
	ViewChildren
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewNothing:
		return "nothing"
	case ViewChildren:
		return "children"
	default:
		return "unknown"
	}
}

// Navigator is the router side of the guard.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// tuple is the part of the world a guard reacts to.
type tuple struct {
	userID          string
	hasUser         bool
	isLoading       bool
	isAdmin         bool
	isLoyaltyMember bool
	req             Requirements
}

func tupleOf(s AuthState, req Requirements) tuple {
	t := tuple{isLoading: s.IsLoading, req: req}
	if s.User != nil {
		t.hasUser = true
		t.userID = s.User.ID
		t.isAdmin = s.IsAdmin
		t.isLoyaltyMember = s.IsLoyaltyMember
	}
	return t
}

// Guard wraps one protected view for its whole mounted lifetime.
type Guard struct {
	mu   sync.Mutex
	req  Requirements
	nav  Navigator
	last *tuple
}

// New returns a guard for a view with the given requirements.
func New(req Requirements, nav Navigator) *Guard {
	return &Guard{req: req, nav: nav}
}

// SetRequirements changes what the view asks for; the next Evaluate re-decides.
func (g *Guard) SetRequirements(req Requirements) {
	g.mu.Lock()
	g.req = req
	g.mu.Unlock()
}

// Evaluate decides what to render for s. Navigation is only issued when the
// relevant state differs from the previous evaluation, and a denied state never
// renders children, even on the evaluation that schedules the redirect.
func (g *Guard) Evaluate(s AuthState) View {
	g.mu.Lock()
	req := g.req
	cur := tupleOf(s, req)
	changed := g.last == nil || *g.last != cur
	g.last = &cur
	g.mu.Unlock()

	d := Decide(s, req)
	switch d.Outcome {
	case OutcomeLoading:
		return ViewLoading
	case OutcomeRedirect:
		if changed && g.nav != nil {
			g.nav.Navigate(d.RedirectTo)
		}
		return ViewNothing
	default:
		return ViewChildren
	}
}
