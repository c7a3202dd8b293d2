package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediaranker/internal/shared"
)

const (
	defaultCookieName = "mediaranker_session"
	defaultTTL        = 7 * 24 * time.Hour
)

// Options configures a [Manager].
type Options struct {
	Store      Store
	Secret     []byte
	CookieName string
	TTL        time.Duration
	Secure     bool
	Logger     *log.Logger
}

// Manager loads and commits sessions around HTTP handlers.
type Manager struct {
	store      Store
	signer     signer
	cookieName string
	ttl        time.Duration
	secure     bool
	logger     *log.Logger
}

// NewManager validates opts and creates a [Manager].
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: session store is required", shared.ErrInvalidConfig)
	}
	if len(opts.Secret) == 0 {
		return nil, fmt.Errorf("%w: session secret is required", shared.ErrInvalidConfig)
	}
	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Manager{
		store:      opts.Store,
		signer:     signer{secret: opts.Secret, ttl: opts.TTL, now: time.Now},
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		logger:     shared.WithLogger(opts.Logger, "component", "session"),
	}, nil
}

// NewStore builds the [Store] selected by cfg.Driver.
func NewStore(ctx context.Context, cfg shared.SessionConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		store := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisPrefix)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown session driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.cookieName }

// Middleware attaches the request's [Session] to its context and commits changes before the
// response headers are sent.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.load(r)

		cw := &commitWriter{ResponseWriter: w}
		cw.commit = func() {
			if err := m.commit(r.Context(), w, s); err != nil {
				m.logger.Error("failed to commit session", "error", err)
			}
		}

		next.ServeHTTP(cw, r.WithContext(NewContext(r.Context(), s)))
		cw.once.Do(cw.commit)
	})
}

// Lookup resolves a cookie value to its stored [Data].
func (m *Manager) Lookup(ctx context.Context, token string) (*Data, error) {
	id, err := m.signer.verify(token)
	if err != nil {
		return nil, err
	}
	return m.store.Load(ctx, id)
}

func (m *Manager) load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return newSession()
	}

	id, err := m.signer.verify(cookie.Value)
	if err != nil {
		m.logger.Debug("discarding session cookie", "error", err)
		return newSession()
	}

	data, err := m.store.Load(r.Context(), id)
	if errors.Is(err, ErrNoSession) {
		return newSession()
	}
	if err != nil {
		m.logger.Error("failed to load session", "error", err)
		return newSession()
	}

	return &Session{id: id, data: *data}
}

func (m *Manager) commit(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.dirty {
		return nil
	}

	if s.renewed && s.prevID != "" {
		if err := m.store.Delete(ctx, s.prevID); err != nil {
			return err
		}
	}

	if s.data.empty() {
		if err := m.store.Delete(ctx, s.id); err != nil {
			return err
		}
		http.SetCookie(w, m.cookie("", -1))
		return nil
	}

	if err := m.store.Save(ctx, s.id, &s.data, m.ttl); err != nil {
		return err
	}

	token, err := m.signer.sign(s.id)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(token, int(m.ttl.Seconds())))
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// commitWriter runs commit once, before the first header or body write.
type commitWriter struct {
	http.ResponseWriter
	commit func()
	once   sync.Once
}

func (w *commitWriter) WriteHeader(code int) {
	w.once.Do(w.commit)
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.once.Do(w.commit)
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to [http.ResponseController].
func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
