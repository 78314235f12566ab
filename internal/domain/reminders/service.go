package reminders

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-reminders/internal/domain/activity"
	"med-reminders/internal/platform/logger"
	"med-reminders/internal/ports/identity"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Recorder registra actividad del dueño en cada transición de ciclo de vida.
// El engine lo trata como fire-and-forget: cualquier error se absorbe acá
// y jamás hace fallar la transición que lo originó. Sin retry, sin cola.
type Recorder interface {
	Record(ctx context.Context, ownerRef string, typ activity.Type, medicationID string) error
}

type Service struct {
	repo     Repository
	resolver identity.Resolver
	recorder Recorder
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, resolver identity.Resolver, recorder Recorder, log logger.Logger) *Service {
	if resolver == nil {
		resolver = identity.Passthrough{}
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
}

type CreateInput struct {
	OwnerRef     string
	MedicationID string
	ScheduledAt  time.Time
	Notes        string
}

// Create registra un reminder en estado pending. Se aceptan horarios en el
// pasado: el sistema no rechaza reminders retro-fechados.
func (s *Service) Create(ctx context.Context, in CreateInput) (Reminder, error) {
	ownerRef := strings.TrimSpace(in.OwnerRef)
	if ownerRef == "" {
		return Reminder{}, ErrInvalidInput
	}
	medicationID := strings.TrimSpace(in.MedicationID)
	if medicationID == "" {
		return Reminder{}, ErrInvalidInput
	}
	if in.ScheduledAt.IsZero() {
		return Reminder{}, ErrInvalidInput
	}

	now := s.now()
	rem := Reminder{
		ID:           uuid.NewString(),
		OwnerRef:     ownerRef,
		MedicationID: medicationID,
		ScheduledAt:  in.ScheduledAt,
		Status:       StatusPending,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, rem); err != nil {
		return Reminder{}, err
	}

	s.record(ctx, ownerRef, activity.TypeReminderCreated, medicationID)
	return rem, nil
}

func (s *Service) GetByID(ctx context.Context, id, ownerRef string) (Reminder, error) {
	return s.fetch(ctx, id, ownerRef)
}

// Complete marca la toma como hecha y estampa completed_at.
// No hay guard contra re-completar: un segundo complete re-estampa
// completed_at.
func (s *Service) Complete(ctx context.Context, id, ownerRef string) (Reminder, error) {
	rem, err := s.fetch(ctx, id, ownerRef)
	if err != nil {
		return Reminder{}, err
	}

	now := s.now()
	rem.Status = StatusCompleted
	rem.CompletedAt = &now
	// SnoozedUntil queda como esté: no se limpia al completar.
	rem.UpdatedAt = now

	if err := s.repo.Update(ctx, rem); err != nil {
		return Reminder{}, err
	}

	s.record(ctx, rem.OwnerRef, activity.TypeMedicationTaken, rem.MedicationID)
	return rem, nil
}

// Miss marca la toma como saltada. No se guarda timestamp del miss
// (asimetría con complete, preservada tal cual).
func (s *Service) Miss(ctx context.Context, id, ownerRef string) (Reminder, error) {
	rem, err := s.fetch(ctx, id, ownerRef)
	if err != nil {
		return Reminder{}, err
	}

	rem.Status = StatusMissed
	rem.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rem); err != nil {
		return Reminder{}, err
	}

	s.record(ctx, rem.OwnerRef, activity.TypeMedicationSkipped, rem.MedicationID)
	return rem, nil
}

// Snooze pospone la toma durationMinutes desde AHORA (re-posponer extiende
// desde el momento del snooze, no desde el snoozed_until anterior).
func (s *Service) Snooze(ctx context.Context, id, ownerRef string, durationMinutes int) (Reminder, error) {
	rem, err := s.fetch(ctx, id, ownerRef)
	if err != nil {
		return Reminder{}, err
	}

	if durationMinutes <= 0 {
		durationMinutes = DefaultSnoozeMinutes
	}

	now := s.now()
	until := now.Add(time.Duration(durationMinutes) * time.Minute)

	rem.Status = StatusSnoozed
	rem.SnoozedUntil = &until
	rem.UpdatedAt = now

	if err := s.repo.Update(ctx, rem); err != nil {
		return Reminder{}, err
	}

	s.record(ctx, rem.OwnerRef, activity.TypeReminderSnoozed, rem.MedicationID)
	return rem, nil
}

type UpdateInput struct {
	MedicationID *string
	ScheduledAt  *time.Time
	Notes        *string
}

// Update reemplaza los campos mutables sin tocar el estado. El horario solo
// es mutable mientras el reminder está pending o snoozed.
func (s *Service) Update(ctx context.Context, id, ownerRef string, in UpdateInput) (Reminder, error) {
	rem, err := s.fetch(ctx, id, ownerRef)
	if err != nil {
		return Reminder{}, err
	}

	if rem.Status != StatusPending && rem.Status != StatusSnoozed {
		return Reminder{}, ErrInvalidInput
	}

	if in.MedicationID != nil {
		medicationID := strings.TrimSpace(*in.MedicationID)
		if medicationID == "" {
			return Reminder{}, ErrInvalidInput
		}
		rem.MedicationID = medicationID
	}
	if in.ScheduledAt != nil {
		if in.ScheduledAt.IsZero() {
			return Reminder{}, ErrInvalidInput
		}
		rem.ScheduledAt = *in.ScheduledAt
	}
	if in.Notes != nil {
		rem.Notes = strings.TrimSpace(*in.Notes)
	}

	rem.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rem); err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

// Delete borra el reminder si el dueño calza. Borrado siempre explícito:
// nada en el sistema borra reminders de forma implícita.
func (s *Service) Delete(ctx context.Context, id, ownerRef string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	owner, err := s.ownerFilter(ctx, ownerRef)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, owner); err != nil {
		return ErrNotFound
	}
	return nil
}

// ListDueToday devuelve los reminders del dueño con scheduled_at dentro de
// [inicio de hoy, inicio de pasado mañana) y estado distinto de
// completed/missed. La ventana es de 48h a propósito: tolera skew de zona
// horaria entre cliente y servidor, aunque sea el doble de "hoy".
func (s *Service) ListDueToday(ctx context.Context, ownerRef string) ([]Reminder, error) {
	owner, err := s.ownerFilter(ctx, ownerRef)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(48 * time.Hour)

	return s.repo.ListByOwner(ctx, owner, ListFilter{
		From:        &start,
		To:          &end,
		NotStatuses: []Status{StatusCompleted, StatusMissed},
	})
}

// ListAll devuelve todos los reminders del dueño, scheduled_at ascendente.
func (s *Service) ListAll(ctx context.Context, ownerRef string) ([]Reminder, error) {
	owner, err := s.ownerFilter(ctx, ownerRef)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, owner, ListFilter{})
}

func (s *Service) fetch(ctx context.Context, id, ownerRef string) (Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reminder{}, ErrInvalidInput
	}

	owner, err := s.ownerFilter(ctx, ownerRef)
	if err != nil {
		return Reminder{}, err
	}

	rem, err := s.repo.GetByID(ctx, id, owner)
	if err != nil {
		return Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (s *Service) ownerFilter(ctx context.Context, ownerRef string) (identity.OwnerFilter, error) {
	ownerRef = strings.TrimSpace(ownerRef)
	if ownerRef == "" {
		return identity.OwnerFilter{}, ErrInvalidInput
	}

	refs, err := s.resolver.Expand(ctx, ownerRef)
	if err != nil || len(refs) == 0 {
		// resolver caído no bloquea la operación: se matchea la forma literal
		refs = []string{ownerRef}
	}
	return identity.OwnerFilter{Refs: refs}, nil
}

// record es fire-and-forget: el error se absorbe y solo queda en el log.
func (s *Service) record(ctx context.Context, ownerRef string, typ activity.Type, medicationID string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, ownerRef, typ, medicationID); err != nil && s.log != nil {
		s.log.Warn("activity record failed", map[string]any{
			"type":  string(typ),
			"error": err.Error(),
		})
	}
}
