package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChannelPartner is a registered broker whose master data can stand in
// for missing expected identifiers on a reconciliation request.
type ChannelPartner struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	PAN       string     `json:"pan"`
	GSTIN     string     `json:"gstin"`
	Email     string     `json:"email,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// GetPartner fetches a single active channel partner by id.
func GetPartner(ctx context.Context, id string) (*ChannelPartner, error) {
	query := `
		SELECT id, name, COALESCE(pan, ''), COALESCE(gstin, ''), COALESCE(email, ''),
		       active, created_at, updated_at
		FROM channel_partners
		WHERE id = $1::uuid AND active = true
	`

	var p ChannelPartner
	err := Pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.PAN, &p.GSTIN, &p.Email,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("partner %s not found: %w", id, err)
	}
	return &p, nil
}

// ListPartners returns active channel partners, newest first.
func ListPartners(ctx context.Context, limit int) ([]ChannelPartner, error) {
	query := `
		SELECT id, name, COALESCE(pan, ''), COALESCE(gstin, ''), COALESCE(email, ''),
		       active, created_at, updated_at
		FROM channel_partners
		WHERE active = true
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []ChannelPartner
	for rows.Next() {
		var p ChannelPartner
		err := rows.Scan(
			&p.ID, &p.Name, &p.PAN, &p.GSTIN, &p.Email,
			&p.Active, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

// CreatePartner registers a channel partner.
func CreatePartner(ctx context.Context, p *ChannelPartner) error {
	query := `
		INSERT INTO channel_partners (name, pan, gstin, email, active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, created_at
	`

	return Pool.QueryRow(ctx, query, p.Name, p.PAN, p.GSTIN, p.Email).
		Scan(&p.ID, &p.CreatedAt)
}

// DeactivatePartner soft-deletes a channel partner.
func DeactivatePartner(ctx context.Context, id string) error {
	tag, err := Pool.Exec(ctx,
		`UPDATE channel_partners SET active = false, updated_at = NOW() WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("partner %s not found", id)
	}
	return nil
}
