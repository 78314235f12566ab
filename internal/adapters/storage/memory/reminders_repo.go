package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"med-reminders/internal/domain/reminders"
	"med-reminders/internal/ports/identity"
)

var (
	ErrNotFound = errors.New("not found")
)

type reminderRepo struct {
	mu   sync.RWMutex
	byID map[string]reminders.Reminder
}

func NewReminderRepo() reminders.Repository {
	return &reminderRepo{
		byID: make(map[string]reminders.Reminder),
	}
}

func (r *reminderRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rem.ID) == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[rem.ID]; exists {
		return errors.New("reminder already exists")
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.byID[id]
	if !ok || !owner.Matches(rem.OwnerRef) {
		return reminders.Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (r *reminderRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rem.ID) == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[rem.ID]; !exists {
		return ErrNotFound
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *reminderRepo) Delete(ctx context.Context, id string, owner identity.OwnerFilter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.byID[id]
	if !ok || !owner.Matches(rem.OwnerRef) {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *reminderRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter, filter reminders.ListFilter) ([]reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Reminder, 0)

	for _, rem := range r.byID {
		if !owner.Matches(rem.OwnerRef) {
			continue
		}

		// Rango de scheduled_at: From inclusivo, To exclusivo
		if filter.From != nil && rem.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !rem.ScheduledAt.Before(*filter.To) {
			continue
		}

		if len(filter.NotStatuses) > 0 {
			skip := false
			for _, st := range filter.NotStatuses {
				if rem.Status == st {
					skip = true
					break
				}
			}
			if skip {
				continue
			}
		}

		out = append(out, rem)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})

	return out, nil
}
