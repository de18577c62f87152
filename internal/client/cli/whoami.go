package cli

import (
	"context"
	"fmt"
	"strings"
)

// Whoami prints the published user and profile. When signed in it first
// refreshes from the backend so the output reflects the authoritative
// record; a transient refresh failure falls back to the last-known-good one.
func (a *App) Whoami(ctx context.Context) error {
	if !a.isSignedIn() {
		fmt.Fprintln(a.out, "Not signed in. Run 'login' first.")
		return nil
	}

	if err := a.ctrl.Refresh(ctx); err != nil {
		if !a.isSignedIn() {
			fmt.Fprintln(a.out, "Your session has expired. Run 'login' to sign in again.")
			return nil
		}
		a.log.Warn(ctx, "refresh failed, showing cached profile", "error", err)
	}

	user := a.currentUser()
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	if user.Role.IsAdmin() {
		fmt.Fprintln(a.out, "Role: admin")
	}
	fmt.Fprintf(a.out, "Logins: %d (last %s)\n", user.LoginCount, user.LastLogin.Format("2006-01-02 15:04"))

	if p := user.Profile; p != nil {
		if p.CodingTrack != "" {
			fmt.Fprintf(a.out, "Track: %s\n", p.CodingTrack)
		}
		if p.College != "" {
			fmt.Fprintf(a.out, "College: %s", p.College)
			if p.Course != "" {
				fmt.Fprintf(a.out, ", %s", p.Course)
			}
			if p.Year != 0 {
				fmt.Fprintf(a.out, " (year %d)", p.Year)
			}
			fmt.Fprintln(a.out)
		}
		if len(p.Interests) > 0 {
			fmt.Fprintf(a.out, "Interests: %s\n", strings.Join(p.Interests, ", "))
		}
		if p.Bio != "" {
			fmt.Fprintf(a.out, "Bio: %s\n", p.Bio)
		}
	}
	return nil
}
