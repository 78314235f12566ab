package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"med-reminders/internal/domain/medications"
	"med-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// UnknownMedicationName se muestra cuando la referencia al medicamento
// ya no resuelve (p.ej. el medicamento fue borrado: no hay cascade).
const UnknownMedicationName = "Unknown Medication"

func RegisterRoutes(r chi.Router, svc *Service, medsSvc *medications.Service) {
	r.Route("/reminders", func(rr chi.Router) {
		rr.Post("/", createReminderHandler(svc, medsSvc))
		rr.Get("/", listRemindersHandler(svc, medsSvc))
		rr.Get("/today", listTodayHandler(svc, medsSvc))

		rr.Get("/{reminderID}", getReminderHandler(svc, medsSvc))
		rr.Patch("/{reminderID}", updateReminderHandler(svc, medsSvc))
		rr.Delete("/{reminderID}", deleteReminderHandler(svc))

		rr.Post("/{reminderID}/complete", completeReminderHandler(svc, medsSvc))
		rr.Post("/{reminderID}/miss", missReminderHandler(svc, medsSvc))
		rr.Post("/{reminderID}/snooze", snoozeReminderHandler(svc, medsSvc))
	})
}

// createReminderRequest es el cuerpo para programar una toma.
type createReminderRequest struct {
	OwnerRef     string `json:"owner_ref"`
	MedicationID string `json:"medication_id"`
	ScheduledAt  string `json:"scheduled_at"` // RFC3339
	Notes        string `json:"notes"`
}

type updateReminderRequest struct {
	OwnerRef     string  `json:"owner_ref"`
	MedicationID *string `json:"medication_id"`
	ScheduledAt  *string `json:"scheduled_at"` // RFC3339
	Notes        *string `json:"notes"`
}

type snoozeReminderRequest struct {
	OwnerRef        string `json:"owner_ref"`
	DurationMinutes int    `json:"duration_minutes"`
}

// ownerBody cubre los POST de transición que solo traen la referencia
// de dueño (complete/miss). El body es opcional.
type ownerBody struct {
	OwnerRef string `json:"owner_ref"`
}

// reminderResponse representa un reminder devuelto por la API, con nombre y
// dosis del medicamento denormalizados para display.
type reminderResponse struct {
	ID       string `json:"id"`
	OwnerRef string `json:"owner_ref"`

	MedicationID     string `json:"medication_id"`
	MedicationName   string `json:"medication_name"`
	MedicationDosage string `json:"medication_dosage,omitempty"`

	ScheduledAt time.Time `json:"scheduled_at"`
	Status      Status    `json:"status"`

	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createReminderHandler godoc
// @Summary Programar una toma
// @Description Crea un reminder en estado pending. Se aceptan horarios en el pasado. Referencia de dueño: query `owner`, campo `owner_ref` del body, o identidad autenticada, en ese orden.
// @Tags reminders
// @Accept json
// @Produce json
// @Param payload body createReminderRequest true "Datos del reminder; scheduled_at en RFC3339"
// @Success 201 {object} reminderResponse
// @Failure 400 {string} string "invalid json / scheduled_at inválido / campos requeridos"
// @Router /reminders [post]
func createReminderHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
			return
		}

		owner := ownerRef(r, req.OwnerRef)
		rem, err := svc.Create(r.Context(), CreateInput{
			OwnerRef:     owner,
			MedicationID: req.MedicationID,
			ScheduledAt:  t,
			Notes:        req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toReminderResponse(r.Context(), medsSvc, owner, rem))
	}
}

// listRemindersHandler godoc
// @Summary Listar todos los reminders del dueño
// @Description Devuelve todos los reminders, scheduled_at ascendente.
// @Tags reminders
// @Produce json
// @Param owner query string false "Referencia de dueño (id interno o email)"
// @Success 200 {array} reminderResponse
// @Failure 400 {string} string "owner requerido"
// @Router /reminders [get]
func listRemindersHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerRef(r, "")
		items, err := svc.ListAll(r.Context(), owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponses(r.Context(), medsSvc, owner, items))
	}
}

// listTodayHandler godoc
// @Summary Listar reminders pendientes de hoy
// @Description Ventana [inicio de hoy, inicio de pasado mañana), excluyendo completed/missed. La ventana de 48h es intencional (tolera skew de TZ cliente/servidor).
// @Tags reminders
// @Produce json
// @Param owner query string false "Referencia de dueño (id interno o email)"
// @Success 200 {array} reminderResponse
// @Failure 400 {string} string "owner requerido"
// @Router /reminders/today [get]
func listTodayHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerRef(r, "")
		items, err := svc.ListDueToday(r.Context(), owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponses(r.Context(), medsSvc, owner, items))
	}
}

// getReminderHandler godoc
// @Summary Obtener un reminder
// @Tags reminders
// @Produce json
// @Param reminderID path string true "ID del reminder"
// @Param owner query string false "Referencia de dueño"
// @Success 200 {object} reminderResponse
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID} [get]
func getReminderHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerRef(r, "")
		rem, err := svc.GetByID(r.Context(), chi.URLParam(r, "reminderID"), owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponse(r.Context(), medsSvc, owner, rem))
	}
}

// updateReminderHandler godoc
// @Summary Editar un reminder
// @Description Reemplaza los campos mutables (horario, notas, medicamento) sin tocar el estado. Solo válido mientras el reminder está pending o snoozed.
// @Tags reminders
// @Accept json
// @Produce json
// @Param reminderID path string true "ID del reminder"
// @Param payload body updateReminderRequest true "Campos a cambiar (solo los presentes)"
// @Success 200 {object} reminderResponse
// @Failure 400 {string} string "invalid json / estado no editable"
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID} [patch]
func updateReminderHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			MedicationID: req.MedicationID,
			Notes:        req.Notes,
		}
		if req.ScheduledAt != nil {
			t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
			if err != nil {
				http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
				return
			}
			in.ScheduledAt = &t
		}

		owner := ownerRef(r, req.OwnerRef)
		rem, err := svc.Update(r.Context(), chi.URLParam(r, "reminderID"), owner, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponse(r.Context(), medsSvc, owner, rem))
	}
}

// deleteReminderHandler godoc
// @Summary Borrar un reminder
// @Tags reminders
// @Param reminderID path string true "ID del reminder"
// @Param owner query string false "Referencia de dueño"
// @Success 204 {string} string ""
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID} [delete]
func deleteReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerBody
		_ = json.NewDecoder(r.Body).Decode(&req) // body opcional

		if err := svc.Delete(r.Context(), chi.URLParam(r, "reminderID"), ownerRef(r, req.OwnerRef)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// completeReminderHandler godoc
// @Summary Marcar toma como hecha
// @Description Transición a completed; estampa completed_at. Re-completar está permitido y re-estampa completed_at.
// @Tags reminders
// @Accept json
// @Produce json
// @Param reminderID path string true "ID del reminder"
// @Success 200 {object} reminderResponse
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID}/complete [post]
func completeReminderHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerBody
		_ = json.NewDecoder(r.Body).Decode(&req) // body opcional

		owner := ownerRef(r, req.OwnerRef)
		rem, err := svc.Complete(r.Context(), chi.URLParam(r, "reminderID"), owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponse(r.Context(), medsSvc, owner, rem))
	}
}

// missReminderHandler godoc
// @Summary Marcar toma como saltada
// @Description Transición a missed. No se guarda timestamp del miss.
// @Tags reminders
// @Accept json
// @Produce json
// @Param reminderID path string true "ID del reminder"
// @Success 200 {object} reminderResponse
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID}/miss [post]
func missReminderHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerBody
		_ = json.NewDecoder(r.Body).Decode(&req) // body opcional

		owner := ownerRef(r, req.OwnerRef)
		rem, err := svc.Miss(r.Context(), chi.URLParam(r, "reminderID"), owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponse(r.Context(), medsSvc, owner, rem))
	}
}

// snoozeReminderHandler godoc
// @Summary Posponer una toma
// @Description Transición a snoozed; snoozed_until = ahora + duration_minutes (default 15 si falta o no es positivo). Re-posponer extiende desde ahora.
// @Tags reminders
// @Accept json
// @Produce json
// @Param reminderID path string true "ID del reminder"
// @Param payload body snoozeReminderRequest false "Duración del snooze en minutos"
// @Success 200 {object} reminderResponse
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID}/snooze [post]
func snoozeReminderHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req snoozeReminderRequest
		_ = json.NewDecoder(r.Body).Decode(&req) // body opcional

		owner := ownerRef(r, req.OwnerRef)
		rem, err := svc.Snooze(r.Context(), chi.URLParam(r, "reminderID"), owner, req.DurationMinutes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponse(r.Context(), medsSvc, owner, rem))
	}
}

func toReminderResponse(ctx context.Context, medsSvc *medications.Service, owner string, rem Reminder) reminderResponse {
	name := UnknownMedicationName
	dosage := ""
	if medsSvc != nil {
		// Lookup solo para display: si falla queda el placeholder.
		if m, err := medsSvc.GetByID(ctx, rem.MedicationID, owner); err == nil {
			name = m.Name
			dosage = m.Dosage
		}
	}

	return reminderResponse{
		ID:               rem.ID,
		OwnerRef:         rem.OwnerRef,
		MedicationID:     rem.MedicationID,
		MedicationName:   name,
		MedicationDosage: dosage,
		ScheduledAt:      rem.ScheduledAt,
		Status:           rem.Status,
		CompletedAt:      rem.CompletedAt,
		SnoozedUntil:     rem.SnoozedUntil,
		Notes:            rem.Notes,
		CreatedAt:        rem.CreatedAt,
		UpdatedAt:        rem.UpdatedAt,
	}
}

func toReminderResponses(ctx context.Context, medsSvc *medications.Service, owner string, items []Reminder) []reminderResponse {
	out := make([]reminderResponse, 0, len(items))
	for _, rem := range items {
		out = append(out, toReminderResponse(ctx, medsSvc, owner, rem))
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "reminder not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ownerRef resuelve la referencia de dueño del request:
// query `owner` > campo del body > identidad autenticada, en ese orden.
func ownerRef(r *http.Request, bodyOwner string) string {
	if v := strings.TrimSpace(r.URL.Query().Get("owner")); v != "" {
		return v
	}
	if v := strings.TrimSpace(bodyOwner); v != "" {
		return v
	}
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		return strings.TrimSpace(claims.UserID)
	}
	return ""
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
