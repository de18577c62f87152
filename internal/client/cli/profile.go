package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/codecampus/campus-cli/internal/client/models"
)

// getSimpleText is an indirection used to facilitate testing.
var getSimpleText = GetSimpleText

// Tracks prints the coding tracks a profile can choose from.
func (a *App) Tracks(ctx context.Context) error {
	fmt.Fprintln(a.out, "Available coding tracks:")
	for _, track := range models.Tracks {
		fmt.Fprintf(a.out, "  - %s\n", track)
	}
	return nil
}

// ProfileSet interactively collects a partial profile update and submits it.
// An empty answer leaves the field unchanged; only the answered fields cross
// the wire. Nothing is applied locally until the backend confirms.
func (a *App) ProfileSet(ctx context.Context) error {
	if !a.isSignedIn() {
		fmt.Fprintln(a.out, "Not signed in. Run 'login' first.")
		return nil
	}

	update := &models.ProfileUpdate{}

	bio, err := getSimpleText(a.reader, "Bio (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if bio != "" {
		update.Bio = &bio
	}

	college, err := getSimpleText(a.reader, "College (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if college != "" {
		update.College = &college
	}

	course, err := getSimpleText(a.reader, "Course (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if course != "" {
		update.Course = &course
	}

	yearText, err := getSimpleText(a.reader, "Year of study (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if yearText != "" {
		year, err := strconv.Atoi(yearText)
		if err != nil {
			return fmt.Errorf("year must be a number: %w", err)
		}
		update.Year = &year
	}

	interests, err := getSimpleText(a.reader, "Interests, comma separated (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if interests != "" {
		update.Interests = splitInterests(interests)
	}

	track, err := getSimpleText(a.reader, "Coding track: web, ai-ml, app, game (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if track != "" {
		t := models.CodingTrack(track)
		update.CodingTrack = &t
	}

	if update.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	if err := a.ctrl.UpdateProfile(ctx, update); err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}

	fmt.Fprintln(a.out, "Profile updated.")
	return nil
}

// splitInterests parses a comma-separated list, preserving order and
// dropping empty items.
func splitInterests(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
