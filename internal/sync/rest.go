package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"

	"github.com/dshills/stagehand/internal/ctxlog"
)

// Store errors.
var (
	// ErrRemote indicates the store rejected a request.
	ErrRemote = errors.New("remote store error")

	// ErrNoStoredScene indicates no snapshot exists under the key.
	ErrNoStoredScene = errors.New("no stored scene")
)

// Store is the request/response fallback surface, used when no
// persistent channel is connected. Each call carries or returns a
// full snapshot document.
type Store interface {
	SaveSession(ctx context.Context, sessionKey string, snapshot []byte) error
	SaveDefault(ctx context.Context, sessionKey, adminKey string, snapshot []byte) error
	LoadSession(ctx context.Context, sessionKey string) ([]byte, error)
	LoadDefault(ctx context.Context, sessionKey string) ([]byte, error)
}

// RESTStore talks to the remote store over plain HTTP.
type RESTStore struct {
	client *resty.Client
}

// NewRESTStore creates a store client against baseURL.
func NewRESTStore(baseURL string, timeout time.Duration) *RESTStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &RESTStore{client: client}
}

// SaveSession stores the session snapshot.
func (s *RESTStore) SaveSession(ctx context.Context, sessionKey string, snapshot []byte) error {
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(snapshot).
		Post("/api/scenes/" + sessionKey)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("save session: %w: status %d", ErrRemote, res.StatusCode())
	}
	ctxlog.FromContext(ctx).Debug("session saved", "key", sessionKey, "status", res.StatusCode())
	return nil
}

// SaveDefault stores the snapshot as the scene default. Requires the
// admin credential.
func (s *RESTStore) SaveDefault(ctx context.Context, sessionKey, adminKey string, snapshot []byte) error {
	res, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Admin-Key", adminKey).
		SetBody(snapshot).
		Post("/api/scenes/" + sessionKey + "/default")
	if err != nil {
		return fmt.Errorf("save default: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("save default: %w: status %d", ErrRemote, res.StatusCode())
	}
	ctxlog.FromContext(ctx).Debug("default saved", "key", sessionKey, "status", res.StatusCode())
	return nil
}

// LoadSession fetches the session snapshot.
func (s *RESTStore) LoadSession(ctx context.Context, sessionKey string) ([]byte, error) {
	return s.load(ctx, "/api/scenes/"+sessionKey)
}

// LoadDefault fetches the scene default snapshot.
func (s *RESTStore) LoadDefault(ctx context.Context, sessionKey string) ([]byte, error) {
	return s.load(ctx, "/api/scenes/"+sessionKey+"/default")
}

func (s *RESTStore) load(ctx context.Context, path string) ([]byte, error) {
	res, err := s.client.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, ErrNoStoredScene
	}
	if res.IsError() {
		return nil, fmt.Errorf("load scene: %w: status %d", ErrRemote, res.StatusCode())
	}
	ctxlog.FromContext(ctx).Debug("scene loaded", "path", path, "bytes", len(res.Bytes()))
	return res.Bytes(), nil
}

// Close releases the underlying HTTP client.
func (s *RESTStore) Close() error {
	return s.client.Close()
}
