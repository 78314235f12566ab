package auth

// Claims es la identidad extraída del token. UserID y Email son las dos
// formas de referencia de dueño que el sistema acepta indistintamente.
type Claims struct {
	UserID string
	Email  string
}
