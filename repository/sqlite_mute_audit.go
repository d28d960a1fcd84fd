package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akinalp/hush/database"
	"github.com/akinalp/hush/models"
)

// sqliteMuteAuditRepo, MuteAuditRepository interface'inin SQLite implementasyonu.
type sqliteMuteAuditRepo struct {
	db database.TxQuerier
}

// NewSQLiteMuteAuditRepo, constructor: interface döner.
func NewSQLiteMuteAuditRepo(db database.TxQuerier) MuteAuditRepository {
	return &sqliteMuteAuditRepo{db: db}
}

// Create, audit kaydını ekler. Allies JSON array olarak saklanır.
func (r *sqliteMuteAuditRepo) Create(ctx context.Context, audit *models.MuteAudit) error {
	allies := audit.Allies
	if allies == nil {
		allies = []string{}
	}
	alliesJSON, err := json.Marshal(allies)
	if err != nil {
		return fmt.Errorf("failed to encode allies: %w", err)
	}

	query := `
		INSERT INTO mute_audit (moderator_nick, moderator_trip, target_nick, target_hash, channel, allies)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		audit.ModeratorNick, audit.ModeratorTrip, audit.TargetNick,
		audit.TargetHash, audit.Channel, string(alliesJSON),
	).Scan(&audit.ID, &audit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create mute audit: %w", err)
	}
	return nil
}

// ListRecent, en yeni limit kadar kaydı döner.
func (r *sqliteMuteAuditRepo) ListRecent(ctx context.Context, limit int) ([]models.MuteAudit, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, moderator_nick, moderator_trip, target_nick, target_hash, channel, allies, created_at
		FROM mute_audit
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list mute audits: %w", err)
	}
	defer rows.Close()

	audits := make([]models.MuteAudit, 0)
	for rows.Next() {
		var a models.MuteAudit
		var alliesJSON string
		if err := rows.Scan(&a.ID, &a.ModeratorNick, &a.ModeratorTrip, &a.TargetNick,
			&a.TargetHash, &a.Channel, &alliesJSON, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mute audit: %w", err)
		}
		if err := json.Unmarshal([]byte(alliesJSON), &a.Allies); err != nil {
			return nil, fmt.Errorf("failed to decode allies for audit %d: %w", a.ID, err)
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
