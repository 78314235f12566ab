package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-reminders/internal/domain/activity"
	"med-reminders/internal/ports/identity"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Reminder
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Reminder{}}
}

func (r *testRepo) Create(ctx context.Context, rem Reminder) error {
	if rem.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[rem.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (Reminder, error) {
	rem, ok := r.byID[id]
	if !ok || !owner.Matches(rem.OwnerRef) {
		return Reminder{}, errRepoNotFound
	}
	return rem, nil
}

func (r *testRepo) Update(ctx context.Context, rem Reminder) error {
	if _, ok := r.byID[rem.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string, owner identity.OwnerFilter) error {
	rem, ok := r.byID[id]
	if !ok || !owner.Matches(rem.OwnerRef) {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter, filter ListFilter) ([]Reminder, error) {
	out := make([]Reminder, 0)
	for _, rem := range r.byID {
		if !owner.Matches(rem.OwnerRef) {
			continue
		}
		if filter.From != nil && rem.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !rem.ScheduledAt.Before(*filter.To) {
			continue
		}
		excluded := false
		for _, st := range filter.NotStatuses {
			if rem.Status == st {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		out = append(out, rem)
	}
	// orden scheduled_at asc, como los adapters reales
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ScheduledAt.Before(out[j-1].ScheduledAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

// -------------------------
// Test recorders
// -------------------------

type recordedEntry struct {
	OwnerRef     string
	Type         activity.Type
	MedicationID string
}

type testRecorder struct {
	entries []recordedEntry
}

func (t *testRecorder) Record(_ context.Context, ownerRef string, typ activity.Type, medicationID string) error {
	t.entries = append(t.entries, recordedEntry{ownerRef, typ, medicationID})
	return nil
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, string, activity.Type, string) error {
	return errors.New("activity store down")
}

func newTestService(repo Repository, rec Recorder, now time.Time) *Service {
	svc := NewService(repo, nil, rec, nil)
	svc.now = func() time.Time { return now }
	return svc
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_RequiresOwnerAndMedication(t *testing.T) {
	svc := newTestService(newTestRepo(), nil, time.Now())
	sched := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), CreateInput{MedicationID: "med-1", ScheduledAt: sched})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing owner, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{OwnerRef: "u1", ScheduledAt: sched})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing medication, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{OwnerRef: "u1", MedicationID: "med-1"})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing scheduled_at, got %v", err)
	}
}

func TestService_Create_StartsPending(t *testing.T) {
	rec := &testRecorder{}
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	svc := newTestService(newTestRepo(), rec, now)

	rem, err := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		Notes:        "con comida",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rem.ID == "" {
		t.Fatalf("expected generated id")
	}
	if rem.Status != StatusPending {
		t.Fatalf("expected pending, got %s", rem.Status)
	}
	if rem.CompletedAt != nil || rem.SnoozedUntil != nil {
		t.Fatalf("expected CompletedAt and SnoozedUntil unset on create")
	}
	if len(rec.entries) != 1 || rec.entries[0].Type != activity.TypeReminderCreated {
		t.Fatalf("expected reminder_created activity, got %#v", rec.entries)
	}
}

func TestService_Create_AcceptsPastSchedule(t *testing.T) {
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	svc := newTestService(newTestRepo(), nil, now)

	// retro-fechado: el sistema no lo rechaza
	rem, err := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  now.Add(-72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error for past schedule: %v", err)
	}
	if rem.Status != StatusPending {
		t.Fatalf("expected pending, got %s", rem.Status)
	}
}

func TestService_Complete_SetsCompletedAt(t *testing.T) {
	repo := newTestRepo()
	rec := &testRecorder{}
	now := time.Date(2024, 1, 10, 8, 5, 0, 0, time.UTC)
	svc := newTestService(repo, rec, now)

	rem, err := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	done, err := svc.Complete(context.Background(), rem.ID, "u1")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Fatalf("expected CompletedAt == now, got %v", done.CompletedAt)
	}
	if rec.entries[len(rec.entries)-1].Type != activity.TypeMedicationTaken {
		t.Fatalf("expected medication_taken activity")
	}
}

func TestService_Complete_TwiceReStamps(t *testing.T) {
	repo := newTestRepo()
	now1 := time.Date(2024, 1, 10, 8, 5, 0, 0, time.UTC)
	now2 := now1.Add(10 * time.Minute)
	svc := newTestService(repo, nil, now1)

	rem, _ := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  now1,
	})

	first, err := svc.Complete(context.Background(), rem.ID, "u1")
	if err != nil {
		t.Fatalf("Complete #1 error: %v", err)
	}

	// no hay guard: re-completar re-estampa completed_at
	svc.now = func() time.Time { return now2 }
	second, err := svc.Complete(context.Background(), rem.ID, "u1")
	if err != nil {
		t.Fatalf("Complete #2 error: %v", err)
	}
	if !second.CompletedAt.After(*first.CompletedAt) {
		t.Fatalf("expected second CompletedAt after first, got %v vs %v", second.CompletedAt, first.CompletedAt)
	}
}

func TestService_Miss_NoTimestamp(t *testing.T) {
	repo := newTestRepo()
	rec := &testRecorder{}
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, rec, now)

	rem, _ := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  now,
	})

	missed, err := svc.Miss(context.Background(), rem.ID, "u1")
	if err != nil {
		t.Fatalf("Miss error: %v", err)
	}
	if missed.Status != StatusMissed {
		t.Fatalf("expected missed, got %s", missed.Status)
	}
	if missed.CompletedAt != nil {
		t.Fatalf("miss must never set CompletedAt")
	}
	if rec.entries[len(rec.entries)-1].Type != activity.TypeMedicationSkipped {
		t.Fatalf("expected medication_skipped activity")
	}
}

func TestService_Snooze_DefaultsTo15(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2024, 1, 10, 7, 55, 0, 0, time.UTC)
	svc := newTestService(repo, nil, now)

	rem, _ := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	})

	// duración 0 => default 15
	snoozed, err := svc.Snooze(context.Background(), rem.ID, "u1", 0)
	if err != nil {
		t.Fatalf("Snooze error: %v", err)
	}
	if snoozed.Status != StatusSnoozed {
		t.Fatalf("expected snoozed, got %s", snoozed.Status)
	}
	want := now.Add(15 * time.Minute)
	if snoozed.SnoozedUntil == nil || !snoozed.SnoozedUntil.Equal(want) {
		t.Fatalf("expected SnoozedUntil %v, got %v", want, snoozed.SnoozedUntil)
	}

	// negativa => también default
	snoozed, err = svc.Snooze(context.Background(), rem.ID, "u1", -5)
	if err != nil {
		t.Fatalf("Snooze error: %v", err)
	}
	if !snoozed.SnoozedUntil.Equal(want) {
		t.Fatalf("expected SnoozedUntil %v for negative duration, got %v", want, snoozed.SnoozedUntil)
	}
}

func TestService_Snooze_ExtendsFromNow(t *testing.T) {
	repo := newTestRepo()
	now1 := time.Date(2024, 1, 10, 7, 55, 0, 0, time.UTC)
	now2 := now1.Add(20 * time.Minute)
	svc := newTestService(repo, nil, now1)

	rem, _ := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	})

	if _, err := svc.Snooze(context.Background(), rem.ID, "u1", 30); err != nil {
		t.Fatalf("Snooze #1 error: %v", err)
	}

	// re-posponer extiende desde AHORA, no desde el snoozed_until anterior
	svc.now = func() time.Time { return now2 }
	snoozed, err := svc.Snooze(context.Background(), rem.ID, "u1", 30)
	if err != nil {
		t.Fatalf("Snooze #2 error: %v", err)
	}
	want := now2.Add(30 * time.Minute)
	if !snoozed.SnoozedUntil.Equal(want) {
		t.Fatalf("expected SnoozedUntil %v, got %v", want, snoozed.SnoozedUntil)
	}
}

func TestService_OwnershipIsolation(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	svc := newTestService(repo, nil, now)

	rem, _ := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  now,
	})

	if _, err := svc.Complete(context.Background(), rem.ID, "intruso"); err != ErrNotFound {
		t.Fatalf("Complete by other owner: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Miss(context.Background(), rem.ID, "intruso"); err != ErrNotFound {
		t.Fatalf("Miss by other owner: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Snooze(context.Background(), rem.ID, "intruso", 10); err != ErrNotFound {
		t.Fatalf("Snooze by other owner: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), rem.ID, "intruso"); err != ErrNotFound {
		t.Fatalf("Delete by other owner: expected ErrNotFound, got %v", err)
	}

	// el registro no se mutó
	stored := repo.byID[rem.ID]
	if stored.Status != StatusPending || stored.CompletedAt != nil || stored.SnoozedUntil != nil {
		t.Fatalf("record mutated by non-owner: %#v", stored)
	}
}

func TestService_ListDueToday_Window(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2024, 1, 10, 10, 30, 0, 0, time.UTC)
	svc := newTestService(repo, nil, now)

	seed := func(id string, at time.Time, st Status) {
		repo.byID[id] = Reminder{
			ID: id, OwnerRef: "u1", MedicationID: "med-1",
			ScheduledAt: at, Status: st,
		}
	}

	seed("ayer", now.Add(-24*time.Hour), StatusPending)
	seed("hoy", time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), StatusPending)
	seed("manana", time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC), StatusPending)
	seed("lejos", now.Add(72*time.Hour), StatusPending)
	seed("hoy-hecho", time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), StatusCompleted)

	items, err := svc.ListDueToday(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListDueToday error: %v", err)
	}

	// ventana de 48h: entra hoy Y mañana; quedan fuera ayer, +3 días
	// y lo ya completado.
	if len(items) != 2 {
		t.Fatalf("expected 2 due reminders, got %d: %#v", len(items), items)
	}
	if items[0].ID != "hoy" || items[1].ID != "manana" {
		t.Fatalf("expected [hoy, manana] in order, got [%s, %s]", items[0].ID, items[1].ID)
	}
}

func TestService_ListAll_OrderedBySchedule(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, nil, now)

	for i, at := range []time.Time{
		now.Add(48 * time.Hour),
		now.Add(-24 * time.Hour),
		now,
	} {
		repo.byID[string(rune('a'+i))] = Reminder{
			ID: string(rune('a' + i)), OwnerRef: "u1", MedicationID: "med-1",
			ScheduledAt: at, Status: StatusPending,
		}
	}

	items, err := svc.ListAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 reminders, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].ScheduledAt.Before(items[i-1].ScheduledAt) {
			t.Fatalf("expected scheduled_at ascending, got %v before %v", items[i-1].ScheduledAt, items[i].ScheduledAt)
		}
	}
}

func TestService_RecorderFailure_DoesNotFailTransitions(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	svc := newTestService(repo, failingRecorder{}, now)

	rem, err := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  now,
	})
	if err != nil {
		t.Fatalf("Create with failing recorder: %v", err)
	}

	if _, err := svc.Snooze(context.Background(), rem.ID, "u1", 10); err != nil {
		t.Fatalf("Snooze with failing recorder: %v", err)
	}
	if _, err := svc.Complete(context.Background(), rem.ID, "u1"); err != nil {
		t.Fatalf("Complete with failing recorder: %v", err)
	}
	if _, err := svc.Miss(context.Background(), rem.ID, "u1"); err != nil {
		t.Fatalf("Miss with failing recorder: %v", err)
	}
}

func TestService_Update_MutableWhilePendingOrSnoozed(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	svc := newTestService(repo, nil, now)

	rem, _ := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-1",
		ScheduledAt:  now,
	})

	newAt := now.Add(2 * time.Hour)
	notes := "después de almuerzo"
	updated, err := svc.Update(context.Background(), rem.ID, "u1", UpdateInput{
		ScheduledAt: &newAt,
		Notes:       &notes,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !updated.ScheduledAt.Equal(newAt) || updated.Notes != notes {
		t.Fatalf("expected fields updated, got %#v", updated)
	}
	if updated.Status != StatusPending {
		t.Fatalf("update must not change status, got %s", updated.Status)
	}

	if _, err := svc.Complete(context.Background(), rem.ID, "u1"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	// completado => horario ya no es mutable
	if _, err := svc.Update(context.Background(), rem.ID, "u1", UpdateInput{ScheduledAt: &newAt}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput updating completed reminder, got %v", err)
	}
}

func TestService_SnoozeThenComplete_KeepsSnoozedUntil(t *testing.T) {
	repo := newTestRepo()
	createAt := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	svc := newTestService(repo, nil, createAt)

	rem, err := svc.Create(context.Background(), CreateInput{
		OwnerRef:     "u1",
		MedicationID: "med-M",
		ScheduledAt:  time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	snoozeAt := time.Date(2024, 1, 10, 7, 55, 0, 0, time.UTC)
	svc.now = func() time.Time { return snoozeAt }
	snoozed, err := svc.Snooze(context.Background(), rem.ID, "u1", 30)
	if err != nil {
		t.Fatalf("Snooze error: %v", err)
	}
	wantUntil := time.Date(2024, 1, 10, 8, 25, 0, 0, time.UTC)
	if !snoozed.SnoozedUntil.Equal(wantUntil) {
		t.Fatalf("expected SnoozedUntil %v, got %v", wantUntil, snoozed.SnoozedUntil)
	}

	completeAt := time.Date(2024, 1, 10, 8, 10, 0, 0, time.UTC)
	svc.now = func() time.Time { return completeAt }
	done, err := svc.Complete(context.Background(), rem.ID, "u1")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if done.Status != StatusCompleted || !done.CompletedAt.Equal(completeAt) {
		t.Fatalf("expected completed at %v, got %#v", completeAt, done)
	}
	// snoozed_until NO se limpia al completar
	if done.SnoozedUntil == nil || !done.SnoozedUntil.Equal(wantUntil) {
		t.Fatalf("expected SnoozedUntil preserved (%v), got %v", wantUntil, done.SnoozedUntil)
	}
}
