package activity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"med-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/activity", listActivityHandler(svc))
}

// entryResponse es una entrada del historial devuelta por la API.
type entryResponse struct {
	ID           string    `json:"id"`
	OwnerRef     string    `json:"owner_ref"`
	Type         Type      `json:"type"`
	MedicationID string    `json:"medication_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// listActivityHandler godoc
// @Summary Listar historial de actividad
// @Description Devuelve las entradas de actividad del dueño, más reciente primero. Referencia de dueño: query `owner` o identidad autenticada.
// @Tags activity
// @Produce json
// @Param owner query string false "Referencia de dueño (id interno o email)"
// @Param limit query int false "Máximo de entradas (1-200). Por defecto 50"
// @Success 200 {array} entryResponse
// @Failure 400 {string} string "owner requerido"
// @Router /activity [get]
func listActivityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.URL.Query().Get("owner"))
		if owner == "" {
			if claims, ok := middleware.GetClaims(r.Context()); ok {
				owner = strings.TrimSpace(claims.UserID)
			}
		}

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		items, err := svc.ListByOwner(r.Context(), owner, limit)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "owner reference required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, entryResponse{
				ID:           e.ID,
				OwnerRef:     e.OwnerRef,
				Type:         e.Type,
				MedicationID: e.MedicationID,
				CreatedAt:    e.CreatedAt,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (mismo criterio que el resto: sin helpers compartidos prematuros).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
