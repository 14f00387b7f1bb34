package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hardbottle/internal/model"
)

type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Insert(e model.AuditEntry) error {
	var ip any
	if e.IPAddress != "" {
		ip = e.IPAddress
	}
	var details any
	if e.Details != "" {
		details = e.Details
	}
	_, err := s.db.Exec(
		`INSERT INTO audit_log (action, entity_type, entity_id, details, actor_id, ip_address) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Action, e.EntityType, e.EntityID, details, e.ActorID, ip,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first, capped at limit.
func (s *AuditStore) ListRecent(limit int) ([]model.AuditEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, action, entity_type, entity_id, details, actor_id, ip_address, created_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var entityID sql.NullInt64
		var details, ip sql.NullString
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &entityID, &details, &e.ActorID, &ip, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if entityID.Valid {
			e.EntityID = &entityID.Int64
		}
		e.Details = details.String
		e.IPAddress = ip.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
