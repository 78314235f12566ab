package identity

import (
	"context"
	"strings"
)

// Resolver expande una referencia de dueño a todas sus formas equivalentes.
// El sistema acepta dos formas intercambiables (id interno o email); ningún
// módulo de dominio debe inspeccionar la forma más allá de "no vacía".
type Resolver interface {
	Expand(ctx context.Context, ref string) ([]string, error)
}

// OwnerFilter agrupa las formas equivalentes ya expandidas de un dueño.
// Los repos filtran por pertenencia a Refs.
type OwnerFilter struct {
	Refs []string
}

func (f OwnerFilter) Matches(ref string) bool {
	for _, r := range f.Refs {
		if r == ref {
			return true
		}
	}
	return false
}

// Passthrough es el resolver por defecto: la referencia se usa tal cual.
type Passthrough struct{}

func (Passthrough) Expand(_ context.Context, ref string) ([]string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	return []string{ref}, nil
}
