package store

import (
	"context"

	"github.com/google/uuid"
)

type AuditEvent struct {
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	Metadata   []byte
}

func (s *Store) InsertAuditEvent(ctx context.Context, ev AuditEvent) error {
	metadata := ev.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	var entityID *string
	if ev.EntityID != "" {
		entityID = &ev.EntityID
	}
	var requestID *string
	if ev.RequestID != "" {
		requestID = &ev.RequestID
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO audit_log (user_id, action, entity_type, entity_id, request_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ev.UserID, ev.Action, ev.EntityType, entityID, requestID, metadata)
	return err
}
