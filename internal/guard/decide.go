// Package guard decides whether a principal may see a protected view and,
// when it may not, where to send it instead.
package guard

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Principal identifies a signed-in user.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// AuthState is the read-only snapshot supplied by the auth provider.
// IsAdmin and IsLoyaltyMember only count when User is set.
type AuthState struct {
	User            *Principal `json:"user"`
	IsLoading       bool       `json:"isLoading"`
	IsAdmin         bool       `json:"isAdmin"`
	IsLoyaltyMember bool       `json:"isLoyaltyMember"`
}

// Requirements are the capabilities a protected view asks for.
type Requirements struct {
	RequireAdmin   bool
	RequireLoyalty bool
}

type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeAllow
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeAllow:
		return "allow"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of Decide. RedirectTo is set only for OutcomeRedirect.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

func allow() Decision { return Decision{Outcome: OutcomeAllow} }

func loading() Decision { return Decision{Outcome: OutcomeLoading} }

func redirect(path string) Decision {
	return Decision{Outcome: OutcomeRedirect, RedirectTo: path}
}

// Allowed reports whether the protected view may render.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

// Decide is the pure authorization rule shared by every host of the guard.
func Decide(s AuthState, req Requirements) Decision {
	if s.IsLoading {
		return loading()
	}
	if s.User == nil {
		return redirect(LoginPath)
	}
	if req.RequireAdmin && !s.IsAdmin {
		return redirect(HomePath)
	}
	if req.RequireLoyalty && !s.IsLoyaltyMember {
		return redirect(HomePath)
	}
	return allow()
}
