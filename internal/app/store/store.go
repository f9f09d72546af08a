/*
Package store is the persistence layer for accounts and the world graph: users,
players, locations, and the links between locations.
*/
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/1o0n1/structure/internal/pkg/logx"
)

// Role values mirror the user_role hierarchy. Ordering matters for permission
// checks; see RoleAtLeast.
const (
	RoleUser      = "User"
	RoleModerator = "Moderator"
	RoleArchitect = "Architect"
	RoleAdmin     = "Admin"
	RoleCreator   = "Creator"
)

// roleRank orders roles from least to most privileged.
var roleRank = map[string]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleArchitect: 3,
	RoleAdmin:     4,
	RoleCreator:   5,
}

// RoleAtLeast reports whether role has at least the privileges of required.
// Unknown roles rank below User.
func RoleAtLeast(role, required string) bool {
	return roleRank[role] >= roleRank[required]
}

// StartLocationID is where every newly registered player spawns. It matches the
// location seeded by the initial migration.
var StartLocationID = uuid.MustParse("a1b2c3d4-e5f6-7890-1234-567890abcdef")

// User is an account row. Password hash and key material are never serialized.
type User struct {
	ID                  uuid.UUID `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	Role                string    `json:"role"`
	PublicKey           *string   `json:"public_key"`
	EncryptedPrivateKey *string   `json:"-"`
	PasswordHash        string    `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Player is the per-user world state: where they are and what they may access.
type Player struct {
	UserID            uuid.UUID  `json:"user_id"`
	CurrentLocationID *uuid.UUID `json:"current_location_id"`
	AccessLevel       int        `json:"access_level"`
	Inventory         []byte     `json:"inventory,omitempty"`
}

// Location is one node of the world graph.
type Location struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ImageURL      *string    `json:"image_url"`
	SecurityLevel int        `json:"security_level"`
	CreatorID     *uuid.UUID `json:"creator_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LocationLink is a traversable edge out of a location.
type LocationLink struct {
	TargetLocationID    uuid.UUID `json:"target_location_id"`
	LinkText            string    `json:"link_text"`
	RequiredAccessLevel int       `json:"required_access_level"`
}

// Store wraps the pgx pool with the queries the handlers and the realtime core need.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New constructs a Store over an initialized pool.
func New(pool *pgxpool.Pool) *Store {
	storeLogger := logx.Logger().With().Str("component", "Store").Logger()

	return &Store{
		pool:   pool,
		logger: storeLogger,
	}
}
