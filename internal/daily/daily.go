// Package daily runs the once-per-day achievement checklist.
package daily

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/models"
	"github.com/julianstephens/concise/internal/runlock"
)

// ErrCancelled is returned when the user aborts the checklist
var ErrCancelled = errors.New("daily check cancelled")

// GoalStore is the subset of the goal registry the daily check needs
type GoalStore interface {
	EnabledGoals(ctx context.Context) ([]models.Goal, error)
	IsRecorded(ctx context.Context, date string) (bool, error)
	LogicalDate(ctx context.Context, now time.Time, delta config.Delta) (string, error)
	RecordDailyCheck(ctx context.Context, date string, achievedIDs []int64) ([]models.DailyAchievement, error)
}

// Prompter asks which goals were achieved on date and returns their ids
type Prompter interface {
	Prompt(date string, goals []models.Goal) ([]int64, error)
}

// Result summarizes a run
type Result struct {
	Date string
	Rows []models.DailyAchievement
	// Skipped is set when nothing was written
	Skipped bool
}

// Achieved counts the rows marked achieved
func (r Result) Achieved() int {
	n := 0
	for _, row := range r.Rows {
		if row.Achieved {
			n++
		}
	}
	return n
}

// Runner performs one daily check: it asks about the enabled goals for the
// logical day and records the answer once.
type Runner struct {
	Goals    GoalStore
	Prompter Prompter
	Delta    config.Delta
	Now      func() time.Time
	Out      io.Writer
	// LockDir holds the run lockfile; empty disables locking
	LockDir string
}

// Run asks about today's enabled goals and records the answer.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	if r.LockDir != "" {
		lock, err := runlock.Acquire(r.LockDir)
		if err != nil {
			return Result{}, err
		}
		defer lock.Release()
	}

	goals, err := r.Goals.EnabledGoals(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(goals) == 0 {
		fmt.Fprintln(out, "No enabled goals. Enable some in the Goals tab first.")
		return Result{Skipped: true}, nil
	}

	date, err := r.Goals.LogicalDate(ctx, now(), r.Delta)
	if err != nil {
		return Result{}, err
	}

	recorded, err := r.Goals.IsRecorded(ctx, date)
	if err != nil {
		return Result{}, err
	}
	if recorded {
		fmt.Fprintf(out, "Already recorded for %s.\n", date)
		return Result{Date: date, Skipped: true}, nil
	}

	achieved, err := r.Prompter.Prompt(date, goals)
	if err != nil {
		return Result{Date: date}, err
	}

	rows, err := r.Goals.RecordDailyCheck(ctx, date, achieved)
	if err != nil {
		return Result{Date: date}, err
	}

	res := Result{Date: date, Rows: rows}
	fmt.Fprintf(out, "✓ Recorded %d goal(s) for %s, %d achieved\n", len(rows), date, res.Achieved())
	return res, nil
}
