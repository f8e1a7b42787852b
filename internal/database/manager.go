// Package database owns the single live database connection derived from the config.
package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
	apperrors "github.com/julianstephens/concise/internal/errors"
	"github.com/julianstephens/concise/internal/keyring"
	"github.com/julianstephens/concise/internal/logger"
)

// Opener opens and verifies a connection for info
type Opener func(ctx context.Context, info ConnInfo) (*sqlx.DB, error)

// URLResolver returns the effective connection URL for the database section
type URLResolver func(db config.Database) (string, error)

// Manager holds at most one live connection. It is safe for use from
// bubbletea commands, which run on their own goroutines.
type Manager struct {
	mu      sync.Mutex
	state   constants.ConnState
	db      *sqlx.DB
	info    ConnInfo
	open    Opener
	resolve URLResolver
}

// Option configures a Manager
type Option func(*Manager)

// WithOpener replaces the default driver-backed opener
func WithOpener(o Opener) Option {
	return func(m *Manager) { m.open = o }
}

// WithResolver replaces the default URL resolver
func WithResolver(r URLResolver) Option {
	return func(m *Manager) { m.resolve = r }
}

// NewManager returns a disconnected manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		state:   constants.Disconnected,
		open:    Open,
		resolve: ResolveURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ResolveURL returns the configured URL, falling back to the OS keyring when
// the URL is empty and the keyring is enabled.
func ResolveURL(db config.Database) (string, error) {
	if strings.TrimSpace(db.URL) != "" || !db.Keyring {
		return strings.TrimSpace(db.URL), nil
	}
	return keyring.GetConnectionString()
}

// Open opens a connection with the driver matching info and pings it.
func Open(ctx context.Context, info ConnInfo) (*sqlx.DB, error) {
	db, err := sqlx.Open(string(info.Driver), info.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection per process
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && info.Params.Get("sslmode") == "" {
			return nil, fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// ApplyConfig reconciles the live connection with cfg. It reports whether a
// connection attempt was made. Only a change of the effective database URL
// causes a reconnect; the comparison uses the URL rebuilt from the live
// connection's metadata. An empty URL closes any live connection.
func (m *Manager) ApplyConfig(ctx context.Context, cfg config.Config) (bool, error) {
	rawURL, err := m.resolve(cfg.Database)
	if err != nil {
		m.Close()
		return false, apperrors.Wrap(apperrors.ErrConnection, fmt.Errorf("resolving database url: %w", err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rawURL == "" {
		if m.db != nil {
			logger.Info("Database url cleared, closing connection")
		}
		m.closeLocked()
		return false, nil
	}

	info, err := ParseURL(rawURL)
	if err != nil {
		m.closeLocked()
		return false, apperrors.Wrap(apperrors.ErrConnection, err)
	}

	if m.db != nil && m.info.URL() == info.URL() {
		return false, nil
	}

	m.closeLocked()
	m.state = constants.Connecting

	connectCtx, cancel := context.WithTimeout(ctx, constants.ConnectTimeout)
	defer cancel()

	db, err := m.open(connectCtx, info)
	if err != nil {
		m.state = constants.Disconnected
		logger.Warn("Database connection failed", "url", info.Redacted(), "error", err)
		return true, apperrors.Wrap(apperrors.ErrConnection, err)
	}

	m.db = db
	m.info = info
	m.state = constants.Connected
	logger.Info("Database connection activated", "url", info.Redacted())
	return true, nil
}

// Current returns the live connection or nil
func (m *Manager) Current() *sqlx.DB {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db
}

// State returns the connection lifecycle state
func (m *Manager) State() constants.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Info returns the metadata of the live connection
func (m *Manager) Info() (ConnInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info, m.db != nil
}

// Driver returns the driver of the live connection, or "" when disconnected
func (m *Manager) Driver() Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return ""
	}
	return m.info.Driver
}

// Close closes the live connection. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	m.state = constants.Disconnected
	if m.db == nil {
		return nil
	}
	db := m.db
	m.db = nil
	m.info = ConnInfo{}
	if err := db.Close(); err != nil {
		logger.Warn("Failed to close database connection", "error", err)
		return err
	}
	return nil
}
