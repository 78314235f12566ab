package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"med-reminders/internal/domain/activity"
	"med-reminders/internal/ports/identity"
)

type activityRepo struct {
	mu   sync.RWMutex
	byID map[string]activity.Entry
}

func NewActivityRepo() activity.Repository {
	return &activityRepo{
		byID: make(map[string]activity.Entry),
	}
}

func (r *activityRepo) Create(ctx context.Context, e activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("entry id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("entry already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *activityRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter, limit int) ([]activity.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = activity.DefaultListLimit
	}

	out := make([]activity.Entry, 0)
	for _, e := range r.byID {
		if owner.Matches(e.OwnerRef) {
			out = append(out, e)
		}
	}

	// más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
