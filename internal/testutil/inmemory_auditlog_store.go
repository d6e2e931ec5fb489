package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/types"
)

// InMemoryAuditLogStore is an in-memory implementation of the auditlog.Repository interface
type InMemoryAuditLogStore struct {
	mu   sync.Mutex
	logs []*auditlog.AuditLog
}

// NewInMemoryAuditLogStore creates a new instance of InMemoryAuditLogStore
func NewInMemoryAuditLogStore() *InMemoryAuditLogStore {
	return &InMemoryAuditLogStore{}
}

func (s *InMemoryAuditLogStore) Create(ctx context.Context, log *auditlog.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, log)
	return nil
}

func (s *InMemoryAuditLogStore) ListByEntity(ctx context.Context, entityType string, entityID string) ([]*auditlog.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*auditlog.AuditLog
	for _, l := range s.logs {
		if string(l.EntityType) == entityType && l.EntityID == entityID {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

// ByAction returns recorded entries with the given action, in insertion order
func (s *InMemoryAuditLogStore) ByAction(action types.AuditAction) []*auditlog.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*auditlog.AuditLog
	for _, l := range s.logs {
		if l.Action == action {
			matched = append(matched, l)
		}
	}
	return matched
}

// Clear clears all audit records from the in-memory store
func (s *InMemoryAuditLogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
}
