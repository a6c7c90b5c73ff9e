package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/store"
)

type Logger struct {
	st *store.Store
}

func NewLogger(st *store.Store) *Logger {
	return &Logger{st: st}
}

type Entry struct {
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	Metadata   map[string]any
}

func (l *Logger) Log(ctx context.Context, entry Entry) error {
	metadata := []byte("{}")
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = encoded
	}

	if err := l.st.InsertAuditEvent(ctx, store.AuditEvent{
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		RequestID:  entry.RequestID,
		Metadata:   metadata,
	}); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
