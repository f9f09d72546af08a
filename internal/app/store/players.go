package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetPlayer fetches the player row for a user.
func (s *Store) GetPlayer(ctx context.Context, userID uuid.UUID) (Player, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, current_location_id, access_level, inventory
		FROM players
		WHERE user_id = $1
	`, userID)

	var p Player
	if err := row.Scan(&p.UserID, &p.CurrentLocationID, &p.AccessLevel, &p.Inventory); err != nil {
		return Player{}, err
	}
	return p, nil
}

// GetCurrentLocation resolves the user's current location id, used once when a
// connection is established. A missing player row or NULL location yields
// (uuid.Nil, nil): the caller treats it as the "no location" sentinel.
func (s *Store) GetCurrentLocation(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT current_location_id
		FROM players
		WHERE user_id = $1
	`, userID)

	var locationID *uuid.UUID
	if err := row.Scan(&locationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}

	if locationID == nil {
		return uuid.Nil, nil
	}
	return *locationID, nil
}

// SetCurrentLocation persists the player's new location. Movement callers must
// complete this write before notifying the realtime coordinator.
func (s *Store) SetCurrentLocation(ctx context.Context, userID, locationID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE players
		SET current_location_id = $2
		WHERE user_id = $1
	`, userID, locationID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
