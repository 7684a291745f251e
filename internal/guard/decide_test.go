package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var alice = &Principal{ID: "1", Email: "alice@example.com"}

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state AuthState
		req   Requirements
		want  Decision
	}{
		{
			name:  "loading wins over everything",
			state: AuthState{IsLoading: true},
			req:   Requirements{RequireAdmin: true, RequireLoyalty: true},
			want:  Decision{Outcome: OutcomeLoading},
		},
		{
			name:  "loading with user still waits",
			state: AuthState{User: alice, IsLoading: true},
			want:  Decision{Outcome: OutcomeLoading},
		},
		{
			name:  "no user goes to login",
			state: AuthState{},
			want:  Decision{Outcome: OutcomeRedirect, RedirectTo: LoginPath},
		},
		{
			name:  "no user goes to login even when admin required",
			state: AuthState{},
			req:   Requirements{RequireAdmin: true},
			want:  Decision{Outcome: OutcomeRedirect, RedirectTo: LoginPath},
		},
		{
			name:  "flags without user are ignored",
			state: AuthState{IsAdmin: true, IsLoyaltyMember: true},
			req:   Requirements{RequireAdmin: true, RequireLoyalty: true},
			want:  Decision{Outcome: OutcomeRedirect, RedirectTo: LoginPath},
		},
		{
			name:  "user without admin goes home",
			state: AuthState{User: alice},
			req:   Requirements{RequireAdmin: true},
			want:  Decision{Outcome: OutcomeRedirect, RedirectTo: HomePath},
		},
		{
			name:  "user without loyalty goes home",
			state: AuthState{User: alice, IsAdmin: true},
			req:   Requirements{RequireLoyalty: true},
			want:  Decision{Outcome: OutcomeRedirect, RedirectTo: HomePath},
		},
		{
			name:  "plain user allowed",
			state: AuthState{User: alice},
			want:  Decision{Outcome: OutcomeAllow},
		},
		{
			name:  "admin allowed",
			state: AuthState{User: alice, IsAdmin: true},
			req:   Requirements{RequireAdmin: true},
			want:  Decision{Outcome: OutcomeAllow},
		},
		{
			name:  "admin and loyalty both required",
			state: AuthState{User: alice, IsAdmin: true, IsLoyaltyMember: true},
			req:   Requirements{RequireAdmin: true, RequireLoyalty: true},
			want:  Decision{Outcome: OutcomeAllow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Decide(tt.state, tt.req)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Outcome == OutcomeAllow, got.Allowed())
		})
	}
}
