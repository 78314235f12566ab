package directory

import (
	"context"
	"strings"

	"med-reminders/internal/platform/logger"
)

// Resolver implementa identity.Resolver contra el directorio de usuarios:
// expande una referencia a todas sus formas equivalentes (id + email).
//
// Collaborator best-effort: si el directorio no está configurado o falla,
// degrada a la forma literal en vez de bloquear la operación.
type Resolver struct {
	client *Client
	log    logger.Logger
}

func NewResolver(client *Client, log logger.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

func (r *Resolver) Expand(ctx context.Context, ref string) ([]string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	if r == nil || r.client == nil || !r.client.IsConfigured() {
		return []string{ref}, nil
	}

	res, err := r.client.Lookup(ctx, ref)
	if err != nil {
		if r.log != nil {
			r.log.Warn("directory lookup failed", map[string]any{"error": err.Error()})
		}
		return []string{ref}, nil
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, 3)
	for _, v := range []string{ref, strings.TrimSpace(res.UserID), strings.TrimSpace(res.Email)} {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
