package cli

import (
	"context"
	"fmt"
)

// Logout clears the session unconditionally. It needs no backend and
// cannot fail: the user can always exit an authenticated state, reachable
// server or not.
func (a *App) Logout(ctx context.Context) error {
	a.ctrl.SignOut(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}
