package cli

import (
	"context"
	"fmt"
	"strings"
)

// Admin opens the moderation entry point. It is gated on the account role,
// the CLI counterpart of the platform's admin-only routes: non-admins are
// turned away before anything admin-facing is shown.
func (a *App) Admin(ctx context.Context) error {
	if !a.isSignedIn() {
		fmt.Fprintln(a.out, "Not signed in. Run 'login' first.")
		return nil
	}

	user := a.currentUser()
	if !user.Role.IsAdmin() {
		fmt.Fprintln(a.out, "This command requires an admin account.")
		return nil
	}

	fmt.Fprintf(a.out, "Signed in as administrator %s.\n", user.Email)
	fmt.Fprintf(a.out, "Moderation dashboard: %s\n", a.dashboardURL())
	return nil
}

// dashboardURL derives the web dashboard location from the API base URL.
func (a *App) dashboardURL() string {
	return strings.TrimSuffix(a.config.APIBaseURL, "/api") + "/admin"
}
