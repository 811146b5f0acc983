package auth

import "sync"

// SessionRegistry tracks which refresh tokens are currently live and which
// user owns each of them. A token missing from the registry is treated as
// revoked even when its signature is still valid.
type SessionRegistry interface {
	// Register stores the token for the user, overwriting any prior entry
	// for the same token string.
	Register(token, userID string)
	// Resolve returns the owning user id, or ok=false for an unknown or
	// already revoked token.
	Resolve(token string) (userID string, ok bool)
	// Revoke removes the entry. Revoking an unknown token is a no-op.
	Revoke(token string)
}

// MemoryRegistry keeps sessions in a mutex-guarded map. It is process-local
// state: a restart or a second server instance invalidates every active
// session. Horizontally scaled deployments should plug a shared durable
// store in behind the SessionRegistry interface instead.
type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]string
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]string)}
}

func (r *MemoryRegistry) Register(token, userID string) {
	if token == "" || userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = userID
}

func (r *MemoryRegistry) Resolve(token string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.sessions[token]
	return userID, ok
}

func (r *MemoryRegistry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// Len reports the number of live sessions.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
