package auth

import "time"

// User is a back-office operator account. Users are never hard deleted;
// deactivation flips IsActive off and blocks authentication.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Username     string     `json:"username,omitempty"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUser carries the fields required to create a user. The password is
// already hashed by the time it reaches a store.
type NewUser struct {
	Name         string
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
}

// Role groups permissions under a unique name.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is an atomic capability key such as "users.create". The catalog
// is reference data: rows are ensured at startup and never mutated by the API.
type Permission struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoleAssignment links a user to a role. Replacing a user's roles is an
// atomic set-replace, never a partial merge.
type RoleAssignment struct {
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BranchAssignment links a user to a branch they may operate in.
type BranchAssignment struct {
	UserID     string    `json:"user_id"`
	BranchID   string    `json:"branch_id"`
	BranchName string    `json:"branch_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Identity is the answer to "who am I": profile plus resolved roles and
// branch assignments.
type Identity struct {
	User     User               `json:"user"`
	Roles    []Role             `json:"roles"`
	Branches []BranchAssignment `json:"branches"`
}
