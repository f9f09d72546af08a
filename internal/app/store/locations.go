package store

import (
	"context"

	"github.com/google/uuid"
)

// GetLocation fetches one location by id.
func (s *Store) GetLocation(ctx context.Context, id uuid.UUID) (Location, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, description, image_url, security_level, creator_id, created_at, updated_at
		FROM locations
		WHERE id = $1
	`, id)

	var l Location
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.ImageURL,
		&l.SecurityLevel, &l.CreatorID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Location{}, err
	}
	return l, nil
}

// ListLinks returns the outgoing links of a location.
func (s *Store) ListLinks(ctx context.Context, sourceID uuid.UUID) ([]LocationLink, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT target_location_id, link_text, required_access_level
		FROM location_links
		WHERE source_location_id = $1
		ORDER BY link_text
	`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]LocationLink, 0)
	for rows.Next() {
		var link LocationLink
		if err := rows.Scan(&link.TargetLocationID, &link.LinkText, &link.RequiredAccessLevel); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// GetLink fetches the link between two locations, if one exists.
func (s *Store) GetLink(ctx context.Context, sourceID, targetID uuid.UUID) (LocationLink, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT target_location_id, link_text, required_access_level
		FROM location_links
		WHERE source_location_id = $1 AND target_location_id = $2
	`, sourceID, targetID)

	var link LocationLink
	if err := row.Scan(&link.TargetLocationID, &link.LinkText, &link.RequiredAccessLevel); err != nil {
		return LocationLink{}, err
	}
	return link, nil
}

// SetLocationImage records the storage key of a location's uploaded image.
func (s *Store) SetLocationImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE locations
		SET image_url = $2, updated_at = now()
		WHERE id = $1
	`, id, imageURL)
	return err
}
