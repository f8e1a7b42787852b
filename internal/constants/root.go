package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

// ConnState represents the lifecycle state of the database connection
type ConnState int

const (
	AppName            = "concise"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "config.toml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DefaultDeltaDays is applied when the config has no timestamp.delta
	DefaultDeltaDays = -5

	// Timeouts around database round-trips
	ConnectTimeout   = 10 * time.Second
	StatementTimeout = 10 * time.Second

	// Run lock
	RunLockfileName = "concise-daily.lock"

	// Connection string placeholder shown in the settings form
	DatabaseURLPlaceholder = "<db>://<username>:<password>@<host>:<port>/<database>"
)

// Session States
const (
	StateGoals SessionState = iota
	StateSettings
	StateAddGoal
	StateRenameGoal
	StateEditSettings
	StateConfirmDelete
)

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}
