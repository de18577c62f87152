package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codecampus/campus-cli/internal/client/models"
	"github.com/codecampus/campus-cli/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Record is the persisted session: the bearer token plus a denormalized
// snapshot of the user taken at the last successful validation. The snapshot
// is a display hint only; it is never treated as authoritative on read.
type Record struct {
	Token string
	User  *models.User
}

// Manager layers the token/user pairing rules on top of a Store. The two
// keys are written together and cleared together; a record missing either
// half is treated as corrupt and discarded.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Save persists the record, fully overwriting any previous session. Both
// keys are written atomically with the same expiry.
func (m *Manager) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.Token == "" || rec.User == nil {
		return fmt.Errorf("%w: token and user must both be present", common.ErrSessionPartial)
	}

	userData, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("failed to encode cached user: %w", err)
	}

	return m.store.SetMany(ctx, map[string][]byte{
		common.SessionKeyToken: []byte(rec.Token),
		common.SessionKeyUser:  userData,
	}, m.effectiveTTL(rec.Token))
}

// Load returns the persisted record, or (nil, nil) when no usable session
// exists. A half-written or undecodable record is cleared and reported
// absent rather than surfaced to the caller.
func (m *Manager) Load(ctx context.Context) (*Record, error) {
	token, err := m.store.Get(ctx, common.SessionKeyToken)
	if err != nil {
		return nil, err
	}
	userData, err := m.store.Get(ctx, common.SessionKeyUser)
	if err != nil {
		return nil, err
	}

	if token == nil && userData == nil {
		return nil, nil
	}
	if token == nil || userData == nil {
		// Corrupt: one half outlived the other.
		if err := m.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal(userData, &user); err != nil {
		if err := m.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &Record{Token: string(token), User: &user}, nil
}

// Clear removes both session keys. Clearing an empty store is a no-op.
func (m *Manager) Clear(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// effectiveTTL caps the configured TTL by the token's own exp claim when the
// token happens to be a JWT. The claim is read without signature verification;
// the client has no key and only uses exp as an upper bound on cache life.
// Opaque tokens keep the configured TTL.
func (m *Manager) effectiveTTL(token string) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return m.ttl
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return m.ttl
	}

	until := exp.Sub(m.now())
	if until < 0 {
		return 0
	}
	if until < m.ttl {
		return until
	}
	return m.ttl
}
