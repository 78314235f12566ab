package auth

import "context"

// AuthVerifier valida un bearer token contra el proveedor de identidad
// y devuelve los claims del usuario, o error si el token no sirve.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
