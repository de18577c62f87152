// Package auth implements the client-side authentication lifecycle: a small
// state machine that owns "who is the current user", validates persisted
// sessions on startup, performs the OAuth code exchange, and publishes every
// state change to subscribers.
//
// # State machine
//
//	Bootstrapping -> Anonymous | Authenticated   (startup validation)
//	Anonymous     -> SigningIn                   (code exchange requested)
//	SigningIn     -> Authenticated | Anonymous   (exchange result)
//	Authenticated -> Authenticated | Anonymous   (refresh/update/sign-out)
//
// The controller is the only writer of the published state; everything else
// reads it through Snapshot or a subscription.
//
// # Error Handling
//
// Failures of operations the caller explicitly requested (SignIn,
// UpdateProfile, Refresh) are returned to that caller. Failures of implicit
// background work (Bootstrap, RefreshSilent) are absorbed into a state
// transition and logged, never thrown at code that didn't ask.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/codecampus/campus-cli/internal/client/api"
	"github.com/codecampus/campus-cli/internal/client/models"
	"github.com/codecampus/campus-cli/internal/client/session"
	"github.com/codecampus/campus-cli/internal/common"
	"github.com/codecampus/campus-cli/internal/logging"
)

// State names a position in the authentication lifecycle.
type State string

const (
	StateBootstrapping State = "bootstrapping"
	StateAnonymous     State = "anonymous"
	StateSigningIn     State = "signing_in"
	StateAuthenticated State = "authenticated"
)

// Snapshot is an immutable view of the published state. User is a deep copy;
// mutating it cannot affect the controller.
type Snapshot struct {
	State       State
	User        *models.User
	Loading     bool // true only while the initial bootstrap check runs
	AuthLoading bool // true only while a sign-in exchange is in flight
}

// IsAuthenticated reports whether routes behind the sign-in wall may render.
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Subscriber observes state publications. Callbacks run outside the
// controller lock, in publication order, on the goroutine that caused the
// transition.
type Subscriber func(Snapshot)

// Controller is the single process-wide authority for the current session.
type Controller struct {
	api      api.Client
	sessions *session.Manager
	log      logging.Logger

	mu          sync.Mutex
	state       State
	user        *models.User
	token       string
	loading     bool
	authLoading bool

	bootstrapped bool

	// Monotonic sequencing for overlapping backend calls: a response is
	// discarded when a newer operation has already been applied.
	seq        uint64
	appliedSeq uint64

	subMu  sync.Mutex
	subs   map[int]Subscriber
	nextID int
}

// NewController builds a controller in the Bootstrapping state. Callers are
// expected to invoke Bootstrap once before rendering anything gated on auth.
func NewController(apiClient api.Client, sessions *session.Manager, log logging.Logger) *Controller {
	return &Controller{
		api:      apiClient,
		sessions: sessions,
		log:      log.With("component", "auth"),
		state:    StateBootstrapping,
		loading:  true,
		subs:     make(map[int]Subscriber),
	}
}

// Snapshot returns the current published state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// IsAuthenticated is shorthand for Snapshot().IsAuthenticated().
func (c *Controller) IsAuthenticated() bool {
	return c.Snapshot().IsAuthenticated()
}

// Token returns the current bearer token, or "" when not authenticated.
// Exposed for collaborators that call the backend directly.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Subscribe registers fn for future state publications and returns an
// unsubscribe func. The current state is delivered immediately so new
// subscribers need no separate initial read.
func (c *Controller) Subscribe(fn Subscriber) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	fn(c.Snapshot())

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// Bootstrap validates any persisted session against the backend and settles
// the controller into Anonymous or Authenticated. It runs at most once; later
// calls are no-ops. The cached user snapshot is only a hint that a round trip
// is worth attempting — the backend response is what gets published.
//
// Bootstrap never returns an error: with no session there is nothing safe to
// fall back to, so every failure becomes "no session" (store cleared).
func (c *Controller) Bootstrap(ctx context.Context) {
	c.mu.Lock()
	if c.bootstrapped {
		c.mu.Unlock()
		return
	}
	c.bootstrapped = true
	seq := c.nextSeqLocked()
	c.mu.Unlock()

	rec, err := c.sessions.Load(ctx)
	if err != nil {
		c.log.Warn(ctx, "failed to read session store", "error", err)
		rec = nil
	}
	if rec == nil {
		c.apply(ctx, seq, StateAnonymous, nil, "")
		return
	}

	user, err := c.api.GetProfile(ctx, rec.Token)
	if err != nil {
		c.log.Info(ctx, "stored session rejected, signing out", "error", err)
		if err := c.sessions.Clear(ctx); err != nil {
			c.log.Warn(ctx, "failed to clear session store", "error", err)
		}
		c.apply(ctx, seq, StateAnonymous, nil, "")
		return
	}

	if c.apply(ctx, seq, StateAuthenticated, user, rec.Token) {
		c.persist(ctx, rec.Token, user)
		c.log.Info(ctx, "session restored", "user_id", user.ID)
	}
}

// SignIn exchanges a Google OAuth authorization code for a session. On
// success the session store is fully overwritten and the controller becomes
// Authenticated; the returned flag tells the caller whether this was the
// account's first sign-in (the caller owns any onboarding flow). On failure
// the controller settles in Anonymous and the error is returned. An exchange
// that resolves after a newer operation took over is discarded and reported
// as ErrSignInSuperseded.
func (c *Controller) SignIn(ctx context.Context, code string) (isNewUser bool, err error) {
	c.mu.Lock()
	if c.state == StateSigningIn {
		c.mu.Unlock()
		return false, common.ErrSignInPending
	}
	c.state = StateSigningIn
	c.authLoading = true
	seq := c.nextSeqLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	result, err := c.api.ExchangeCode(ctx, code)
	if err != nil {
		c.apply(ctx, seq, StateAnonymous, nil, "")
		return false, err
	}

	// A result that lost the sequence race was discarded, so the caller must
	// not treat the exchange as a completed sign-in.
	if !c.apply(ctx, seq, StateAuthenticated, result.User, result.Token) {
		return false, common.ErrSignInSuperseded
	}
	c.persist(ctx, result.Token, result.User)
	c.log.Info(ctx, "signed in", "user_id", result.User.ID, "new_user", result.IsNewUser)
	return result.IsNewUser, nil
}

// Refresh re-fetches the authoritative user record. An unauthorized response
// means the session is dead: the store is cleared and the controller becomes
// Anonymous. Any other failure keeps the last-known-good user published and
// is returned for the caller to surface.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.mu.Unlock()
		return common.ErrNotSignedIn
	}
	token := c.token
	seq := c.nextSeqLocked()
	c.mu.Unlock()

	user, err := c.api.GetProfile(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			if clearErr := c.sessions.Clear(ctx); clearErr != nil {
				c.log.Warn(ctx, "failed to clear session store", "error", clearErr)
			}
			c.apply(ctx, seq, StateAnonymous, nil, "")
		}
		return err
	}

	// Persist only when the response was actually applied; a stale response
	// must not rewrite the store after a newer operation (say, a sign-out).
	if c.apply(ctx, seq, StateAuthenticated, user, token) {
		c.persist(ctx, token, user)
	}
	return nil
}

// RefreshSilent is Refresh for background callers: failures are logged, not
// returned. The unauthorized transition still applies.
func (c *Controller) RefreshSilent(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn(ctx, "profile refresh failed", "error", err)
	}
}

// UpdateProfile sends a partial profile mutation and then re-hydrates from
// the backend. The locally merged object is never published: on any failure
// the published user stays exactly as it was before the call.
func (c *Controller) UpdateProfile(ctx context.Context, update *models.ProfileUpdate) error {
	if update == nil || update.IsEmpty() {
		return nil
	}
	if err := update.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.mu.Unlock()
		return common.ErrNotSignedIn
	}
	token := c.token
	c.mu.Unlock()

	if _, err := c.api.UpdateProfile(ctx, token, update); err != nil {
		return err
	}

	// Re-fetch rather than trusting the update response, so the published
	// user is always a byproduct of a successful read.
	return c.Refresh(ctx)
}

// SignOut unconditionally clears the session and publishes Anonymous. It is
// defined purely as local-state clearing: no network round trip is involved,
// so a user can always exit an authenticated state even with the backend
// unreachable. Store errors are logged and swallowed.
func (c *Controller) SignOut(ctx context.Context) {
	c.mu.Lock()
	seq := c.nextSeqLocked()
	c.mu.Unlock()

	if err := c.sessions.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear session store", "error", err)
	}
	c.apply(ctx, seq, StateAnonymous, nil, "")
	c.log.Info(ctx, "signed out")
}

// ---- internals ----

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:       c.state,
		User:        c.user.Clone(),
		Loading:     c.loading,
		AuthLoading: c.authLoading,
	}
}

func (c *Controller) nextSeqLocked() uint64 {
	c.seq++
	return c.seq
}

// apply publishes the result of operation seq. Returns false when a newer
// operation already resolved, in which case the stale result is dropped.
func (c *Controller) apply(ctx context.Context, seq uint64, state State, user *models.User, token string) bool {
	c.mu.Lock()
	if seq < c.appliedSeq {
		c.mu.Unlock()
		c.log.Debug(ctx, "dropping stale response", "seq", seq, "applied", c.appliedSeq)
		return false
	}
	c.appliedSeq = seq
	c.state = state
	c.user = user
	c.token = token
	c.loading = false
	c.authLoading = false
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return true
}

// persist rewrites the session store with a backend-confirmed record.
// Persistence failures degrade the session to this process only; they do not
// fail the operation.
func (c *Controller) persist(ctx context.Context, token string, user *models.User) {
	err := c.sessions.Save(ctx, &session.Record{Token: token, User: user})
	if err != nil {
		c.log.Warn(ctx, "failed to persist session", "error", err)
	}
}

func (c *Controller) notify(snap Snapshot) {
	c.subMu.Lock()
	fns := make([]Subscriber, 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
