package auth

import (
	"context"
	"sort"
	"strings"
	"time"
)

// storeTimeout bounds every persistence round-trip made on behalf of a
// request so a hung database call cannot pin the handling goroutine forever.
const storeTimeout = 5 * time.Second

// Service orchestrates login, refresh, logout and identity queries. It
// composes the credential check, the token issuer, the session registry and
// the permission resolution into one facade the HTTP layer talks to.
type Service struct {
	store    Store
	registry SessionRegistry
	tokens   *TokenIssuer
	now      func() time.Time
	timeout  time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithStoreTimeout overrides the per-call persistence timeout.
func WithStoreTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService constructs the session facade.
func NewService(store Store, registry SessionRegistry, tokens *TokenIssuer, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		registry: registry,
		tokens:   tokens,
		now:      time.Now,
		timeout:  storeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureBuiltins makes sure the permission catalog exists.
func (s *Service) EnsureBuiltins(ctx context.Context) error {
	return s.store.EnsurePermissions(ctx, BuiltinPermissions)
}

// Login verifies credentials and issues a token pair. The identifier is an
// email when it contains "@", a username otherwise. Unknown identifier,
// wrong password and deactivated account all collapse into ErrUnauthorized
// so callers cannot probe which check failed.
func (s *Service) Login(ctx context.Context, identifier, password string) (TokenPair, Principal, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		user User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.FindUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.store.FindUserByUsername(ctx, identifier)
	}
	if err != nil {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}
	if !user.IsActive {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}

	now := s.now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		return TokenPair{}, Principal{}, err
	}
	user.LastLoginAt = &now

	principal, err := s.principalFor(ctx, user)
	if err != nil {
		return TokenPair{}, Principal{}, err
	}
	pair, err := s.tokens.Pair(user)
	if err != nil {
		return TokenPair{}, Principal{}, err
	}
	s.registry.Register(pair.RefreshToken, user.ID)
	return pair, principal, nil
}

// Refresh rotates a refresh token: the presented token is verified, matched
// against the registry, revoked, and a fresh pair is issued. Every failure
// in this path collapses into ErrUnauthorized.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, Principal, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}

	owner, ok := s.registry.Resolve(refreshToken)
	if !ok {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}
	if owner != claims.Subject {
		// Signature-valid token pointing at someone else's session entry.
		// Drop the entry and refuse.
		s.registry.Revoke(refreshToken)
		return TokenPair{}, Principal{}, ErrUnauthorized
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.store.GetUser(ctx, owner)
	if err != nil || !user.IsActive {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}

	principal, err := s.principalFor(ctx, user)
	if err != nil {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}

	// Rotation: the old token is single-use.
	s.registry.Revoke(refreshToken)
	pair, err := s.tokens.Pair(user)
	if err != nil {
		return TokenPair{}, Principal{}, ErrUnauthorized
	}
	s.registry.Register(pair.RefreshToken, user.ID)
	return pair, principal, nil
}

// Logout revokes the refresh token. It never fails: logging out an unknown
// or already revoked token is a successful no-op.
func (s *Service) Logout(refreshToken string) {
	s.registry.Revoke(strings.TrimSpace(refreshToken))
}

// AuthenticateToken validates an access token and loads its principal.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (Principal, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.store.GetUser(ctx, claims.Subject)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	if !user.IsActive {
		return Principal{}, ErrInvalidToken
	}
	return s.principalFor(ctx, user)
}

// Identity returns the user's profile with resolved roles and branch
// assignments. A user id that no longer resolves yields ErrUnauthorized.
func (s *Service) Identity(ctx context.Context, userID string) (Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	roles, err := s.store.RolesForUser(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	branches, err := s.store.BranchesForUser(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	if roles == nil {
		roles = []Role{}
	}
	if branches == nil {
		branches = []BranchAssignment{}
	}
	return Identity{User: user, Roles: roles, Branches: branches}, nil
}

// Permissions resolves the flattened, sorted permission key set held by the
// user through their roles. A user with no roles gets an empty set.
func (s *Service) Permissions(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	keys, err := s.store.UserPermissionKeys(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dedupeSorted(keys), nil
}

func (s *Service) principalFor(ctx context.Context, user User) (Principal, error) {
	roles, err := s.store.RolesForUser(ctx, user.ID)
	if err != nil {
		return Principal{}, err
	}
	keys, err := s.store.UserPermissionKeys(ctx, user.ID)
	if err != nil {
		return Principal{}, err
	}
	return NewPrincipal(user, roles, keys), nil
}

func dedupeSorted(keys []string) []string {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		set[k] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
