// Package goals stores goals and the daily achievement log.
package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/database"
	apperrors "github.com/julianstephens/concise/internal/errors"
	"github.com/julianstephens/concise/internal/logger"
	"github.com/julianstephens/concise/internal/models"
	"github.com/julianstephens/concise/internal/utils"
)

// Connector exposes the live connection. *database.Manager implements it.
type Connector interface {
	Current() *sqlx.DB
	Driver() database.Driver
}

// Registry runs goal and achievement queries over the live connection.
type Registry struct {
	conn Connector
}

// New returns a registry that queries whatever connection conn currently holds
func New(conn Connector) *Registry {
	return &Registry{conn: conn}
}

func (r *Registry) db() (*sqlx.DB, error) {
	db := r.conn.Current()
	if db == nil {
		return nil, apperrors.ErrStoreUnavailable
	}
	return db, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.StatementTimeout)
}

const selectGoals = "SELECT id, name, is_enabled FROM goal_info"

// ListGoals returns every goal ordered by id
func (r *Registry) ListGoals(ctx context.Context) ([]models.Goal, error) {
	return r.selectGoals(ctx, selectGoals+" ORDER BY id")
}

// EnabledGoals returns the goals included in the daily check, ordered by id
func (r *Registry) EnabledGoals(ctx context.Context) ([]models.Goal, error) {
	return r.selectGoals(ctx, selectGoals+" WHERE is_enabled ORDER BY id")
}

func (r *Registry) selectGoals(ctx context.Context, query string) ([]models.Goal, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	goals := []models.Goal{}
	if err := db.SelectContext(ctx, &goals, query); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// AddGoal inserts a disabled goal. Names are trimmed, must be non-empty and
// must not already exist.
func (r *Registry) AddGoal(ctx context.Context, name string) (models.Goal, error) {
	name, err := cleanName(name)
	if err != nil {
		return models.Goal{}, err
	}
	db, err := r.db()
	if err != nil {
		return models.Goal{}, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureNameFree(ctx, tx, name, 0); err != nil {
		return models.Goal{}, err
	}

	goal := models.Goal{Name: name}
	err = tx.GetContext(ctx, &goal.ID,
		tx.Rebind("INSERT INTO goal_info (name, is_enabled) VALUES (?, ?) RETURNING id"), name, false)
	if err != nil {
		return models.Goal{}, mapWriteError("failed to add goal", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Goal{}, mapWriteError("failed to commit goal", err)
	}

	logger.Debug("Goal added", "id", goal.ID, "name", name)
	return goal, nil
}

// RenameGoal changes the name of goal id
func (r *Registry) RenameGoal(ctx context.Context, id int64, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	db, err := r.db()
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureNameFree(ctx, tx, name, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE goal_info SET name = ? WHERE id = ?"), name, id)
	if err != nil {
		return mapWriteError("failed to rename goal", err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapWriteError("failed to commit rename", err)
	}

	logger.Debug("Goal renamed", "id", id, "name", name)
	return nil
}

// DeleteGoal removes goal id. Its achievement history is kept.
func (r *Registry) DeleteGoal(ctx context.Context, id int64) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM goal_info WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}

	logger.Debug("Goal deleted", "id", id)
	return nil
}

// SetEnabledGoals replaces the enabled set with ids in one transaction. An
// unknown id rolls everything back with ErrNotFound.
func (r *Registry) SetEnabledGoals(ctx context.Context, ids []int64) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids = uniqueIDs(ids)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE goal_info SET is_enabled = ?"), false); err != nil {
		return fmt.Errorf("failed to clear enabled goals: %w", err)
	}

	if len(ids) > 0 {
		query, args, err := sqlx.In("UPDATE goal_info SET is_enabled = ? WHERE id IN (?)", true, ids)
		if err != nil {
			return fmt.Errorf("failed to build enable query: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("failed to enable goals: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to enable goals: %w", err)
		}
		if int(n) != len(ids) {
			missing, err := missingIDs(ctx, tx, ids)
			if err != nil {
				return err
			}
			return apperrors.Wrap(apperrors.ErrNotFound, fmt.Errorf("goal ids %v", missing))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit enabled goals: %w", err)
	}

	logger.Debug("Enabled goals replaced", "ids", ids)
	return nil
}

// IsRecorded reports whether date already has achievement rows
func (r *Registry) IsRecorded(ctx context.Context, date string) (bool, error) {
	db, err := r.db()
	if err != nil {
		return false, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := countDay(ctx, db, date)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordDailyCheck writes one row per enabled goal for date, marking the
// goals in achievedIDs as achieved. The enabled set is read inside the same
// transaction. Nothing is written when the day already has rows.
func (r *Registry) RecordDailyCheck(ctx context.Context, date string, achievedIDs []int64) ([]models.DailyAchievement, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDailyLog, fmt.Errorf("invalid date %q: %w", date, err))
	}
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDailyLog, err)
	}
	defer tx.Rollback()

	n, err := countDay(ctx, tx, date)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDailyLog, err)
	}
	if n > 0 {
		return nil, apperrors.Wrap(apperrors.ErrDailyLog, fmt.Errorf("%w: %s", apperrors.ErrAlreadyRecorded, date))
	}

	var enabled []int64
	if err := tx.SelectContext(ctx, &enabled, "SELECT id FROM goal_info WHERE is_enabled ORDER BY id"); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDailyLog, fmt.Errorf("failed to read enabled goals: %w", err))
	}

	achieved := make(map[int64]bool, len(achievedIDs))
	for _, id := range achievedIDs {
		achieved[id] = true
	}

	insert := tx.Rebind(`INSERT INTO d1_goal (goal_id, "timestamp", is_acheived) VALUES (?, ?, ?)`)
	rows := make([]models.DailyAchievement, 0, len(enabled))
	for _, id := range enabled {
		row := models.DailyAchievement{GoalID: id, Date: date, Achieved: achieved[id]}
		if _, err := tx.ExecContext(ctx, insert, row.GoalID, row.Date, row.Achieved); err != nil {
			if isUniqueViolation(err) {
				err = fmt.Errorf("%w: %s", apperrors.ErrAlreadyRecorded, date)
			}
			return nil, apperrors.Wrap(apperrors.ErrDailyLog, err)
		}
		rows = append(rows, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDailyLog, err)
	}

	achieved := 0
	for _, row := range rows {
		if row.Achieved {
			achieved++
		}
	}
	logger.Info("Daily check recorded", "date", date, "goals", len(rows), "achieved", achieved)
	return rows, nil
}

// Achievements returns the rows recorded between from and to (inclusive)
func (r *Registry) Achievements(ctx context.Context, from, to string) ([]models.DailyAchievement, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows := []models.DailyAchievement{}
	query := db.Rebind(`SELECT goal_id, CAST("timestamp" AS TEXT) AS day, is_acheived FROM d1_goal
		WHERE "timestamp" >= ? AND "timestamp" <= ? ORDER BY "timestamp", goal_id`)
	if err := db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to read achievements: %w", err)
	}
	return rows, nil
}

// DuplicateAchievements lists (goal, day) pairs recorded more than once,
// which databases created without the unique index may contain.
func (r *Registry) DuplicateAchievements(ctx context.Context) ([]models.DuplicateAchievement, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	dups := []models.DuplicateAchievement{}
	query := `SELECT goal_id, CAST("timestamp" AS TEXT) AS day, COUNT(*) AS n FROM d1_goal
		GROUP BY goal_id, "timestamp" HAVING COUNT(*) > 1 ORDER BY goal_id, "timestamp"`
	if err := db.SelectContext(ctx, &dups, query); err != nil {
		return nil, fmt.Errorf("failed to check achievements: %w", err)
	}
	return dups, nil
}

// StoreLocation returns the timezone of the store: the postgres session
// timezone, or the local zone for sqlite.
func (r *Registry) StoreLocation(ctx context.Context) (*time.Location, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	if r.conn.Driver() != database.DriverPostgres {
		return time.Local, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var tz string
	if err := db.GetContext(ctx, &tz, "SHOW timezone"); err != nil {
		return nil, fmt.Errorf("failed to read store timezone: %w", err)
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid store timezone %q: %w", tz, err)
	}
	return loc, nil
}

// LogicalDate returns the logical day for now shifted by delta in the store timezone
func (r *Registry) LogicalDate(ctx context.Context, now time.Time, delta config.Delta) (string, error) {
	loc, err := r.StoreLocation(ctx)
	if err != nil {
		return "", err
	}
	return utils.LogicalDate(now, loc, delta), nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ErrInvalidName
	}
	return name, nil
}

func ensureNameFree(ctx context.Context, tx *sqlx.Tx, name string, exceptID int64) error {
	var n int
	err := tx.GetContext(ctx, &n, tx.Rebind("SELECT COUNT(*) FROM goal_info WHERE name = ? AND id <> ?"), name, exceptID)
	if err != nil {
		return fmt.Errorf("failed to check goal name: %w", err)
	}
	if n > 0 {
		return apperrors.Wrap(apperrors.ErrDuplicateName, fmt.Errorf("%q", name))
	}
	return nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, fmt.Errorf("goal id %d", id))
	}
	return nil
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

func countDay(ctx context.Context, q queryer, date string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, q.Rebind(`SELECT COUNT(*) FROM d1_goal WHERE "timestamp" = ?`), date)
	if err != nil {
		return 0, fmt.Errorf("failed to check recorded day: %w", err)
	}
	return n, nil
}

func missingIDs(ctx context.Context, tx *sqlx.Tx, ids []int64) ([]int64, error) {
	query, args, err := sqlx.In("SELECT id FROM goal_info WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	var found []int64
	if err := tx.SelectContext(ctx, &found, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to look up goals: %w", err)
	}
	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []int64
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func mapWriteError(msg string, err error) error {
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.ErrDuplicateName, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}
