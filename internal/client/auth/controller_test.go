package auth

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/codecampus/campus-cli/internal/client/api"
	"github.com/codecampus/campus-cli/internal/client/models"
	"github.com/codecampus/campus-cli/internal/client/session"
	"github.com/codecampus/campus-cli/internal/common"
	"github.com/codecampus/campus-cli/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

// fakeClient implements api.Client for controller unit tests.
type fakeClient struct {
	mu sync.Mutex

	ExchangeResult *models.AuthResult
	ExchangeErr    error

	ProfileRet *models.User
	ProfileErr error

	UpdateRet *models.User
	UpdateErr error

	ExchangeCalls int
	ProfileCalls  int
	UpdateCalls   int

	LastCode   string
	LastToken  string
	LastUpdate *models.ProfileUpdate

	// When set, the matching call blocks until the channel is closed.
	exchangeGate chan struct{}
	profileGate  chan struct{}

	// When true, every call panics. Used to prove an operation makes no
	// network round trip at all.
	panicOnCall bool
}

func (f *fakeClient) ExchangeCode(ctx context.Context, code string) (*models.AuthResult, error) {
	if f.panicOnCall {
		panic("unexpected backend call")
	}
	f.mu.Lock()
	f.ExchangeCalls++
	f.LastCode = code
	gate := f.exchangeGate
	result, err := f.ExchangeResult, f.ExchangeErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *fakeClient) GetProfile(ctx context.Context, token string) (*models.User, error) {
	if f.panicOnCall {
		panic("unexpected backend call")
	}
	f.mu.Lock()
	f.ProfileCalls++
	f.LastToken = token
	gate := f.profileGate
	user, err := f.ProfileRet, f.ProfileErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, token string, update *models.ProfileUpdate) (*models.User, error) {
	if f.panicOnCall {
		panic("unexpected backend call")
	}
	f.mu.Lock()
	f.UpdateCalls++
	f.LastToken = token
	f.LastUpdate = update
	user, err := f.UpdateRet, f.UpdateErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }
func (f *fakeClient) Close() error                   { return nil }

var _ api.Client = (*fakeClient)(nil)

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, "debug")
}

func backendUser() *models.User {
	return &models.User{
		ID:       "u1",
		GoogleID: "g-1",
		Email:    "a@b.com",
		Name:     "Ada",
		Role:     models.RoleUser,
		Profile:  &models.Profile{Bio: "hello", CodingTrack: models.TrackWeb},
	}
}

func newTestController(f *fakeClient) (*Controller, *session.Manager) {
	mgr := session.NewManager(session.NewMemoryStore(), session.DefaultTTL)
	return NewController(f, mgr, testLogger()), mgr
}

func seedSession(t *testing.T, mgr *session.Manager, token string, user *models.User) {
	t.Helper()
	require.NoError(t, mgr.Save(context.Background(), &session.Record{Token: token, User: user}))
}

func signIn(t *testing.T, c *Controller, f *fakeClient, token string, user *models.User) {
	t.Helper()
	f.mu.Lock()
	f.ExchangeResult = &models.AuthResult{User: user, Token: token}
	f.mu.Unlock()
	_, err := c.SignIn(context.Background(), "code")
	require.NoError(t, err)
}

// ---- bootstrap ----

func TestBootstrapWithoutSession(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)
	ctx := context.Background()

	require.Equal(t, StateBootstrapping, c.Snapshot().State)
	require.True(t, c.Snapshot().Loading)

	c.Bootstrap(ctx)

	snap := c.Snapshot()
	require.Equal(t, StateAnonymous, snap.State)
	require.Nil(t, snap.User)
	require.False(t, snap.Loading)
	require.Zero(t, f.ProfileCalls, "no backend call without a stored token")
}

func TestBootstrapWithValidSession(t *testing.T) {
	f := &fakeClient{ProfileRet: backendUser()}
	c, mgr := newTestController(f)
	ctx := context.Background()

	// The cached snapshot is stale on purpose; the backend's record wins.
	seedSession(t, mgr, "T1", &models.User{ID: "u1", Name: "Stale Name"})

	c.Bootstrap(ctx)

	snap := c.Snapshot()
	require.Equal(t, StateAuthenticated, snap.State)
	require.True(t, snap.IsAuthenticated())
	require.Equal(t, "Ada", snap.User.Name, "published user comes from the backend, not the cache")
	require.Equal(t, "T1", f.LastToken)
	require.Equal(t, "T1", c.Token())

	// Store rewritten with the fresh record.
	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "T1", rec.Token)
	require.Equal(t, "Ada", rec.User.Name)
}

func TestBootstrapWithRejectedSession(t *testing.T) {
	f := &fakeClient{ProfileErr: common.ErrUnauthorized}
	c, mgr := newTestController(f)
	ctx := context.Background()

	seedSession(t, mgr, "T_BAD", backendUser())

	c.Bootstrap(ctx)

	snap := c.Snapshot()
	require.Equal(t, StateAnonymous, snap.State)
	require.Nil(t, snap.User)
	require.False(t, snap.Loading)

	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, rec, "store must end up empty")
}

func TestBootstrapNetworkFailureTreatedAsNoSession(t *testing.T) {
	f := &fakeClient{ProfileErr: common.ErrUnavailable}
	c, mgr := newTestController(f)
	ctx := context.Background()

	seedSession(t, mgr, "T1", backendUser())

	c.Bootstrap(ctx)

	require.Equal(t, StateAnonymous, c.Snapshot().State)
	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestBootstrapRunsOnce(t *testing.T) {
	f := &fakeClient{ProfileRet: backendUser()}
	c, mgr := newTestController(f)
	ctx := context.Background()

	seedSession(t, mgr, "T1", backendUser())

	c.Bootstrap(ctx)
	c.Bootstrap(ctx)
	c.Bootstrap(ctx)

	require.Equal(t, 1, f.ProfileCalls)
}

// ---- sign-in ----

func TestSignInSuccess(t *testing.T) {
	f := &fakeClient{ExchangeResult: &models.AuthResult{
		User:      &models.User{ID: "u2", Email: "c@d.com"},
		Token:     "T2",
		IsNewUser: true,
	}}
	c, mgr := newTestController(f)
	ctx := context.Background()

	isNewUser, err := c.SignIn(ctx, "code123")
	require.NoError(t, err)
	require.True(t, isNewUser)
	require.Equal(t, "code123", f.LastCode)

	snap := c.Snapshot()
	require.Equal(t, StateAuthenticated, snap.State)
	require.Equal(t, "u2", snap.User.ID)
	require.False(t, snap.AuthLoading)

	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "T2", rec.Token)
	require.Equal(t, "u2", rec.User.ID)
}

func TestSignInFailurePropagatesError(t *testing.T) {
	exchangeErr := &api.Error{Status: 200, Message: "invalid authorization code"}
	f := &fakeClient{ExchangeErr: exchangeErr}
	c, mgr := newTestController(f)
	ctx := context.Background()

	_, err := c.SignIn(ctx, "bad")
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)

	snap := c.Snapshot()
	require.Equal(t, StateAnonymous, snap.State)
	require.False(t, snap.AuthLoading)

	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestSignInOverwritesPreviousSession(t *testing.T) {
	f := &fakeClient{}
	c, mgr := newTestController(f)
	ctx := context.Background()

	first := &models.User{ID: "u1", Profile: &models.Profile{Bio: "old bio"}}
	signIn(t, c, f, "T1", first)

	second := &models.User{ID: "u2"}
	signIn(t, c, f, "T2", second)

	snap := c.Snapshot()
	require.Equal(t, "u2", snap.User.ID)
	require.Nil(t, snap.User.Profile, "no merging of old and new profile data")

	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "T2", rec.Token)
	require.Nil(t, rec.User.Profile)
}

func TestSignInWhileSignInPending(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)

	// Park the controller in the in-flight state.
	c.mu.Lock()
	c.state = StateSigningIn
	c.authLoading = true
	c.mu.Unlock()

	_, err := c.SignIn(context.Background(), "second")
	require.ErrorIs(t, err, common.ErrSignInPending)
	require.Zero(t, f.ExchangeCalls)
}

// ---- refresh ----

func TestRefreshReplacesUserAndRewritesStore(t *testing.T) {
	f := &fakeClient{}
	c, mgr := newTestController(f)
	ctx := context.Background()

	signIn(t, c, f, "T1", &models.User{ID: "u1", Name: "Ada"})

	f.mu.Lock()
	f.ProfileRet = &models.User{ID: "u1", Name: "Ada Lovelace", LoginCount: 5}
	f.mu.Unlock()

	require.NoError(t, c.Refresh(ctx))

	snap := c.Snapshot()
	require.Equal(t, "Ada Lovelace", snap.User.Name)
	require.Equal(t, int64(5), snap.User.LoginCount)

	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", rec.User.Name)
}

func TestRefreshUnauthorizedForcesAnonymous(t *testing.T) {
	f := &fakeClient{}
	c, mgr := newTestController(f)
	ctx := context.Background()

	signIn(t, c, f, "T1", backendUser())

	f.mu.Lock()
	f.ProfileErr = common.ErrUnauthorized
	f.mu.Unlock()

	err := c.Refresh(ctx)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	require.Equal(t, StateAnonymous, c.Snapshot().State)
	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestRefreshTransientFailureKeepsLastKnownGood(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)
	ctx := context.Background()

	signIn(t, c, f, "T1", backendUser())

	f.mu.Lock()
	f.ProfileErr = common.ErrUnavailable
	f.mu.Unlock()

	err := c.Refresh(ctx)
	require.ErrorIs(t, err, common.ErrUnavailable)

	snap := c.Snapshot()
	require.Equal(t, StateAuthenticated, snap.State, "network blip must not sign the user out")
	require.Equal(t, "u1", snap.User.ID)
}

func TestRefreshWhenAnonymous(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)

	c.Bootstrap(context.Background())
	require.ErrorIs(t, c.Refresh(context.Background()), common.ErrNotSignedIn)
}

// ---- profile update ----

func TestUpdateProfileRefetchesInsteadOfTrustingMerge(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)
	ctx := context.Background()

	signIn(t, c, f, "T1", backendUser())

	bio := "new bio"
	f.mu.Lock()
	// The PUT response and the authoritative GET differ on purpose.
	f.UpdateRet = &models.User{ID: "u1", Profile: &models.Profile{Bio: "merge artifact"}}
	f.ProfileRet = &models.User{ID: "u1", Profile: &models.Profile{Bio: "new bio"}}
	f.mu.Unlock()

	require.NoError(t, c.UpdateProfile(ctx, &models.ProfileUpdate{Bio: &bio}))

	require.Equal(t, 1, f.UpdateCalls)
	require.Equal(t, 1, f.ProfileCalls, "a successful update must trigger a re-fetch")
	require.Equal(t, "new bio", c.Snapshot().User.Profile.Bio)
}

func TestUpdateProfileFailureAppliesNothing(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)
	ctx := context.Background()

	signIn(t, c, f, "T1", backendUser())
	before := c.Snapshot().User

	bio := "hi"
	f.mu.Lock()
	f.UpdateErr = common.ErrUnavailable
	f.mu.Unlock()

	err := c.UpdateProfile(ctx, &models.ProfileUpdate{Bio: &bio})
	require.ErrorIs(t, err, common.ErrUnavailable)

	after := c.Snapshot().User
	require.Equal(t, before, after, "published user must be identical to its pre-call value")
	require.Equal(t, "hello", after.Profile.Bio, "optimistic bio must not leak")
	require.Zero(t, f.ProfileCalls, "failed update must not refresh")
}

func TestUpdateProfileInvalidTrack(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)
	ctx := context.Background()

	signIn(t, c, f, "T1", backendUser())

	bad := models.CodingTrack("quantum")
	err := c.UpdateProfile(ctx, &models.ProfileUpdate{CodingTrack: &bad})
	require.ErrorIs(t, err, common.ErrInvalidTrack)
	require.Zero(t, f.UpdateCalls)
}

func TestUpdateProfileEmptyIsNoop(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)

	signIn(t, c, f, "T1", backendUser())
	require.NoError(t, c.UpdateProfile(context.Background(), &models.ProfileUpdate{}))
	require.Zero(t, f.UpdateCalls)
}

func TestUpdateProfileWhenAnonymous(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)
	c.Bootstrap(context.Background())

	bio := "hi"
	err := c.UpdateProfile(context.Background(), &models.ProfileUpdate{Bio: &bio})
	require.ErrorIs(t, err, common.ErrNotSignedIn)
}

// ---- sign-out ----

func TestSignOutAlwaysSucceeds(t *testing.T) {
	f := &fakeClient{}
	c, mgr := newTestController(f)
	ctx := context.Background()

	signIn(t, c, f, "T1", backendUser())

	// Any network call from here on would panic.
	f.panicOnCall = true

	require.NotPanics(t, func() { c.SignOut(ctx) })

	snap := c.Snapshot()
	require.Equal(t, StateAnonymous, snap.State)
	require.Nil(t, snap.User)

	f.panicOnCall = false
	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, rec, "both session keys gone after sign-out")
}

func TestSignOutWhenAlreadyAnonymous(t *testing.T) {
	f := &fakeClient{panicOnCall: true}
	c, _ := newTestController(f)

	require.NotPanics(t, func() { c.SignOut(context.Background()) })
	require.Equal(t, StateAnonymous, c.Snapshot().State)
}

// ---- sequencing ----

func TestStaleRefreshResponseIsDropped(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeClient{}
	c, _ := newTestController(f)
	ctx := context.Background()

	signIn(t, c, f, "T1", backendUser())

	f.mu.Lock()
	f.ProfileRet = &models.User{ID: "u1", Name: "From Slow Refresh"}
	f.profileGate = gate
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- c.Refresh(ctx) }()

	// Wait until the refresh is parked inside the fake.
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.ProfileCalls == 1
	}, time.Second, 5*time.Millisecond)

	// Sign out while the refresh is still in flight.
	c.SignOut(ctx)
	require.Equal(t, StateAnonymous, c.Snapshot().State)

	close(gate)
	require.NoError(t, <-done)

	// The slow response must not resurrect the session.
	snap := c.Snapshot()
	require.Equal(t, StateAnonymous, snap.State)
	require.Nil(t, snap.User)
}

func TestSupersededSignInReturnsError(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeClient{
		ExchangeResult: &models.AuthResult{User: backendUser(), Token: "T1", IsNewUser: true},
		exchangeGate:   gate,
	}
	c, mgr := newTestController(f)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.SignIn(ctx, "code")
		done <- err
	}()

	// Wait until the exchange is parked inside the fake.
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.ExchangeCalls == 1
	}, time.Second, 5*time.Millisecond)

	// Sign out while the exchange is still in flight.
	c.SignOut(ctx)
	close(gate)

	// The discarded exchange must not report a completed sign-in.
	require.ErrorIs(t, <-done, common.ErrSignInSuperseded)
	require.Equal(t, StateAnonymous, c.Snapshot().State)

	rec, err := mgr.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, rec, "store stays empty after the discarded exchange")
}

// ---- subscriptions ----

func TestSubscribeDeliversCurrentAndFutureStates(t *testing.T) {
	f := &fakeClient{ExchangeResult: &models.AuthResult{User: &models.User{ID: "u1"}, Token: "T1"}}
	c, _ := newTestController(f)
	ctx := context.Background()

	var mu sync.Mutex
	var states []State
	unsubscribe := c.Subscribe(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})

	c.Bootstrap(ctx)
	_, err := c.SignIn(ctx, "code")
	require.NoError(t, err)

	mu.Lock()
	got := append([]State(nil), states...)
	mu.Unlock()
	require.Equal(t, []State{StateBootstrapping, StateAnonymous, StateSigningIn, StateAuthenticated}, got)

	unsubscribe()
	c.SignOut(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 4, "no notifications after unsubscribe")
}

func TestSnapshotUserIsIsolated(t *testing.T) {
	f := &fakeClient{}
	c, _ := newTestController(f)

	signIn(t, c, f, "T1", backendUser())

	snap := c.Snapshot()
	snap.User.Name = "Mutated"
	snap.User.Profile.Bio = "mutated"

	fresh := c.Snapshot()
	require.Equal(t, "Ada", fresh.User.Name)
	require.Equal(t, "hello", fresh.User.Profile.Bio)
}
