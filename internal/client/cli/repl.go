package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

func newStdinScanner() *bufio.Scanner {
	return bufio.NewScanner(os.Stdin)
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	isAdmin() bool
	Login(ctx context.Context) error
	Whoami(ctx context.Context) error
	ProfileSet(ctx context.Context) error
	Tracks(ctx context.Context) error
	Admin(ctx context.Context) error
	Logout(ctx context.Context) error
}

// getStatus renders the prompt suffix: the signed-in email, with an admin
// marker where applicable.
func (a *App) getStatus() string {
	snap := a.ctrl.Snapshot()
	if !snap.IsAuthenticated() {
		return ""
	}
	s := snap.User.Email
	if snap.User.Role.IsAdmin() {
		s += " admin"
	}
	return fmt.Sprintf("(%s)", s)
}

// Run bootstraps the session and starts the interactive loop.
func (a *App) Run(ctx context.Context) {
	a.Bootstrap(ctx)

	printlnFn("Welcome to CodeCampus CLI (type 'help' for commands)")
	if snap := a.ctrl.Snapshot(); snap.IsAuthenticated() {
		printlnFn(fmt.Sprintf("Signed in as %s", snap.User.Email))
	}

	runREPL(ctx, a, a.getStatus, newStdinScanner())
}

// runREPL starts a simple read–eval–print loop for the CodeCampus CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not signed in:
//	  - help           — show available commands
//	  - login          — sign in with Google
//	  - tracks         — list coding tracks
//	  - exit | quit    — leave the program
//
//	Signed in:
//	  - help           — show available commands
//	  - whoami         — show the current user and profile
//	  - profile        — update profile fields
//	  - tracks         — list coding tracks
//	  - admin          — moderation entry point (admin accounts only)
//	  - logout         — sign out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are printed here and the loop
// continues; a failed command never terminates the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	report := func(err error) {
		if err != nil {
			printlnFn("Error:", err)
		}
	}

	for {
		printlnFn(fmt.Sprintf("campus %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				printlnFn("Available commands: whoami, profile, tracks, admin, logout, exit")
			case a.isSignedIn():
				printlnFn("Available commands: whoami, profile, tracks, logout, exit")
			default:
				printlnFn("Available commands: login, tracks, exit")
			}

		case "login":
			report(a.Login(ctx))

		case "whoami":
			report(a.Whoami(ctx))

		case "profile":
			report(a.ProfileSet(ctx))

		case "tracks":
			report(a.Tracks(ctx))

		case "admin":
			report(a.Admin(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
