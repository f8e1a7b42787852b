package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/keyring"
)

type DoctorCmd struct{}

type check struct {
	name    string
	needsDB bool
	warning bool
	run     func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Config readable", run: checkConfig},
	{name: "Keyring", warning: true, run: checkKeyring},
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Goal list", needsDB: true, warning: true, run: checkGoals},
	{name: "Daily log duplicates", needsDB: true, run: checkDuplicates},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if c.name == "Database reachable" {
				dbReachable = true
			}
		case c.warning:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	return ctx.LoadConfig()
}

func checkKeyring(ctx *cli.Context) error {
	if !ctx.Config.Database.Keyring {
		return nil
	}
	if !keyring.IsAvailable() {
		return fmt.Errorf("database.keyring is enabled but the OS keyring is not available")
	}
	if _, err := keyring.GetConnectionString(); err != nil {
		return fmt.Errorf("no connection string in keyring: %w", err)
	}
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	bg, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()

	if _, err := ctx.DB.ApplyConfig(bg, ctx.Config); err != nil {
		return err
	}
	db := ctx.DB.Current()
	if db == nil {
		return fmt.Errorf("no database url configured")
	}

	var result int
	if err := db.GetContext(bg, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}
	return runner.ValidateVersion(context.Background())
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}

	current, err := runner.CurrentVersion(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.LatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'concise init')", current, latest)
	}
	return nil
}

func checkGoals(ctx *cli.Context) error {
	goals, err := ctx.Goals.ListGoals(context.Background())
	if err != nil {
		return err
	}
	enabled := 0
	for _, g := range goals {
		if g.IsEnabled {
			enabled++
		}
	}
	if len(goals) > 0 && enabled == 0 {
		return fmt.Errorf("%d goal(s) but none enabled; the daily check will have nothing to ask", len(goals))
	}
	return nil
}

func checkDuplicates(ctx *cli.Context) error {
	dups, err := ctx.Goals.DuplicateAchievements(context.Background())
	if err != nil {
		return err
	}
	if len(dups) > 0 {
		first := dups[0]
		return fmt.Errorf("found %d duplicated (goal, day) pair(s), e.g. goal %d on %s recorded %d times",
			len(dups), first.GoalID, first.Date, first.Count)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if ctx.DB.Current() == nil {
		return nil
	}
	_, err := ctx.Goals.StoreLocation(context.Background())
	return err
}
