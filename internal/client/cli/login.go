package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/codecampus/campus-cli/internal/client/oauth"
	"github.com/codecampus/campus-cli/internal/common"
)

// getSecret is an indirection used to facilitate testing.
var getSecret = GetSecret

// Login runs the Google sign-in flow and authenticates the session.
//
// With a configured Google client ID it starts the loopback listener, prints
// the consent URL for the user to open, and waits for the redirect to
// deliver the authorization code. Without one (e.g. the code was obtained
// elsewhere) it asks the user to paste the code, read without echo.
//
// On success it greets the user; a first-time account additionally gets a
// hint to pick a coding track. Exchange failures are returned to the caller.
func (a *App) Login(ctx context.Context) error {
	if a.isSignedIn() {
		fmt.Fprintf(a.out, "Already signed in as %s.\n", a.currentUser().Email)
		return nil
	}

	code, err := a.obtainCode(ctx)
	if err != nil {
		return err
	}

	isNewUser, err := a.ctrl.SignIn(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrSignInPending) {
			fmt.Fprintln(a.out, "A sign-in is already in progress.")
			return nil
		}
		return fmt.Errorf("sign-in failed: %w", err)
	}

	user := a.currentUser()
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	if isNewUser {
		fmt.Fprintln(a.out, "Looks like this is your first visit — run 'profile' to pick a coding track.")
	}
	return nil
}

// obtainCode gets an authorization code either via the loopback redirect or
// by manual paste.
func (a *App) obtainCode(ctx context.Context) (string, error) {
	if a.config.GoogleClientID == "" {
		return getSecret("Paste the authorization code", a.out)
	}

	state := oauth.NewState()
	listener := oauth.NewListener(a.config.RedirectPort, state, a.log)
	if err := listener.Start(); err != nil {
		return "", err
	}
	defer listener.Close()

	url := oauth.AuthURL(a.config.GoogleClientID, listener.RedirectURI(), state)
	fmt.Fprintf(a.out, "Open the following URL in your browser to sign in:\n\n  %s\n\nWaiting for the redirect...\n", url)

	return listener.Wait(ctx)
}
