package directory

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"med-reminders/internal/platform/httpclient"
)

var ErrNotConfigured = errors.New("directory client not configured")

// Config del cliente de directorio de usuarios.
// BaseURL normalmente viene de DIRECTORY_BASE_URL.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client consulta el directorio para resolver las dos formas de una
// referencia de dueño (id interno <-> email).
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) *Client {
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		hc = httpclient.New(cfg.Timeout)
	}
	return &Client{http: hc}
}

// NewClientWithHTTP permite inyectar el httpclient (para tests).
func NewClientWithHTTP(hc *httpclient.Client) *Client {
	return &Client{http: hc}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != ""
}

type LookupResult struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Lookup resuelve una referencia (id o email) a su registro de usuario.
func (c *Client) Lookup(ctx context.Context, ref string) (LookupResult, error) {
	if !c.IsConfigured() {
		return LookupResult{}, ErrNotConfigured
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return LookupResult{}, errors.New("directory: ref required")
	}

	var out LookupResult
	path := "/v1/users/lookup?ref=" + url.QueryEscape(ref)
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return LookupResult{}, err
	}
	return out, nil
}
