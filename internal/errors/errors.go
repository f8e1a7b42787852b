package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/concise/internal/logger"
)

var (
	// ErrConfigRead is returned when the config file is missing or unparseable
	ErrConfigRead = stderrors.New("config read error")
	// ErrConfigWrite is returned when the config file cannot be written
	ErrConfigWrite = stderrors.New("config write error")
	// ErrConnection is returned when a connection attempt fails
	ErrConnection = stderrors.New("connection error")
	// ErrStoreUnavailable is returned when no connection is open
	ErrStoreUnavailable = stderrors.New("store unavailable: no database connection")
	// ErrDuplicateName is returned when a goal name is already taken
	ErrDuplicateName = stderrors.New("goal name already exists")
	// ErrNotFound is returned when a goal id does not exist
	ErrNotFound = stderrors.New("goal not found")
	// ErrDailyLog is returned when the daily achievement write fails
	ErrDailyLog = stderrors.New("daily log error")
	// ErrInvalidName is returned for empty goal names
	ErrInvalidName = stderrors.New("goal name cannot be empty")
	// ErrAlreadyRecorded is returned when the logical day already has achievement rows
	ErrAlreadyRecorded = stderrors.New("daily check already recorded for this day")
)

// Wrap tags err with the given kind so both match errors.Is
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Is reports whether any error in err's tree matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
