package models

import (
	"fmt"

	"github.com/codecampus/campus-cli/internal/common"
)

// ProfileUpdate is a partial profile mutation for PUT /profile. Nil fields
// are omitted from the request body and left untouched by the backend.
type ProfileUpdate struct {
	Name        *string      `json:"name,omitempty"`
	Bio         *string      `json:"bio,omitempty"`
	College     *string      `json:"college,omitempty"`
	Course      *string      `json:"course,omitempty"`
	Year        *int         `json:"year,omitempty"`
	Interests   []string     `json:"interests,omitempty"`
	CodingTrack *CodingTrack `json:"coding_track,omitempty"`
	TeamID      *string      `json:"team_id,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (p *ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Bio == nil && p.College == nil && p.Course == nil &&
		p.Year == nil && p.Interests == nil && p.CodingTrack == nil && p.TeamID == nil
}

// Validate checks the fields the client can verify locally before a round
// trip. The backend remains the final validator.
func (p *ProfileUpdate) Validate() error {
	if p.CodingTrack != nil && !p.CodingTrack.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidTrack, *p.CodingTrack)
	}
	if p.Year != nil && (*p.Year < 1 || *p.Year > 6) {
		return fmt.Errorf("year must be between 1 and 6, got %d", *p.Year)
	}
	return nil
}
