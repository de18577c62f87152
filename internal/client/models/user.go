// Package models defines client-side mirrors of the CodeCampus backend
// entities. The backend is the sole owner of these records; the client only
// caches them and never treats a local copy as authoritative.
package models

import "time"

// Role is the authorization discriminator on a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether the role grants access to moderation surfaces.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CodingTrack identifies the curriculum path chosen on a profile.
type CodingTrack string

const (
	TrackWeb  CodingTrack = "web"
	TrackAIML CodingTrack = "ai-ml"
	TrackApp  CodingTrack = "app"
	TrackGame CodingTrack = "game"
)

// Tracks lists the coding tracks accepted by the backend, in display order.
var Tracks = []CodingTrack{TrackWeb, TrackAIML, TrackApp, TrackGame}

// Valid reports whether t is one of the accepted tracks. The empty track is
// valid: it means "not chosen yet".
func (t CodingTrack) Valid() bool {
	if t == "" {
		return true
	}
	for _, known := range Tracks {
		if t == known {
			return true
		}
	}
	return false
}

// Profile is the user-mutable extension embedded in a User record.
type Profile struct {
	Bio         string      `json:"bio,omitempty"`
	College     string      `json:"college,omitempty"`
	Course      string      `json:"course,omitempty"`
	Year        int         `json:"year,omitempty"`
	Interests   []string    `json:"interests,omitempty"`
	CodingTrack CodingTrack `json:"coding_track,omitempty"`
	TeamID      string      `json:"team_id,omitempty"`
}

// User mirrors the backend user record. Lifecycle metadata (LastLogin,
// LoginCount) is backend-owned and only ever read here.
type User struct {
	ID            string    `json:"id"`
	GoogleID      string    `json:"google_id"`
	Email         string    `json:"email"`
	VerifiedEmail bool      `json:"verified_email"`
	Name          string    `json:"name"`
	Picture       string    `json:"picture,omitempty"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	LastLogin     time.Time `json:"last_login"`
	LoginCount    int64     `json:"login_count"`
	Profile       *Profile  `json:"profile,omitempty"`
}

// Clone returns a deep copy of the user so published snapshots cannot be
// mutated behind the controller's back.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Profile != nil {
		p := *u.Profile
		if u.Profile.Interests != nil {
			p.Interests = append([]string(nil), u.Profile.Interests...)
		}
		out.Profile = &p
	}
	return &out
}

// AuthResult is the outcome of a successful OAuth code exchange.
// IsNewUser distinguishes first-time sign-ins; the caller decides any
// onboarding flow, the controller only passes the flag through.
type AuthResult struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	IsNewUser bool   `json:"is_new_user"`
}
