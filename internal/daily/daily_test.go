package daily

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/models"
	"github.com/julianstephens/concise/internal/utils"
)

type fakeStore struct {
	goals    []models.Goal
	recorded map[string][]int64
	loc      *time.Location
	err      error
}

func (s *fakeStore) EnabledGoals(ctx context.Context) ([]models.Goal, error) {
	return s.goals, s.err
}

func (s *fakeStore) IsRecorded(ctx context.Context, date string) (bool, error) {
	_, ok := s.recorded[date]
	return ok, nil
}

func (s *fakeStore) LogicalDate(ctx context.Context, now time.Time, delta config.Delta) (string, error) {
	return utils.LogicalDate(now, s.loc, delta), nil
}

func (s *fakeStore) RecordDailyCheck(ctx context.Context, date string, achievedIDs []int64) ([]models.DailyAchievement, error) {
	if s.recorded == nil {
		s.recorded = map[string][]int64{}
	}
	s.recorded[date] = achievedIDs
	achieved := map[int64]bool{}
	for _, id := range achievedIDs {
		achieved[id] = true
	}
	var rows []models.DailyAchievement
	for _, g := range s.goals {
		rows = append(rows, models.DailyAchievement{GoalID: g.ID, Date: date, Achieved: achieved[g.ID]})
	}
	return rows, nil
}

type fakePrompter struct {
	answer []int64
	err    error
	calls  int
	seen   []models.Goal
}

func (p *fakePrompter) Prompt(date string, goals []models.Goal) ([]int64, error) {
	p.calls++
	p.seen = goals
	return p.answer, p.err
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
}

func TestRunRecordsAnswer(t *testing.T) {
	store := &fakeStore{
		goals: []models.Goal{{ID: 1, Name: "read", IsEnabled: true}, {ID: 2, Name: "write", IsEnabled: true}},
		loc:   time.UTC,
	}
	prompter := &fakePrompter{answer: []int64{2}}
	var out bytes.Buffer

	r := &Runner{Goals: store, Prompter: prompter, Delta: config.Delta{Hours: config.IntPtr(-5)}, Now: fixedNow, Out: &out}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Date != "2024-03-09" {
		t.Errorf("expected logical day 2024-03-09, got %s", res.Date)
	}
	if res.Skipped || len(res.Rows) != 2 || res.Achieved() != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(prompter.seen, store.goals) {
		t.Errorf("prompter saw %+v", prompter.seen)
	}
	if !strings.Contains(out.String(), "2024-03-09") {
		t.Errorf("summary missing date: %q", out.String())
	}
}

func TestRunNoEnabledGoals(t *testing.T) {
	prompter := &fakePrompter{}
	var out bytes.Buffer
	r := &Runner{Goals: &fakeStore{loc: time.UTC}, Prompter: prompter, Now: fixedNow, Out: &out}

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Skipped || prompter.calls != 0 {
		t.Errorf("expected skipped run without prompt, got %+v (calls=%d)", res, prompter.calls)
	}
	if !strings.Contains(out.String(), "No enabled goals") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunAlreadyRecorded(t *testing.T) {
	store := &fakeStore{
		goals:    []models.Goal{{ID: 1, Name: "read", IsEnabled: true}},
		recorded: map[string][]int64{"2024-03-10": nil},
		loc:      time.UTC,
	}
	prompter := &fakePrompter{}
	r := &Runner{Goals: store, Prompter: prompter, Now: fixedNow, Out: &bytes.Buffer{}}

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Skipped || prompter.calls != 0 {
		t.Errorf("expected no prompt for a recorded day, got %+v", res)
	}
}

func TestRunCancelledWritesNothing(t *testing.T) {
	store := &fakeStore{goals: []models.Goal{{ID: 1, Name: "read", IsEnabled: true}}, loc: time.UTC}
	r := &Runner{Goals: store, Prompter: &fakePrompter{err: ErrCancelled}, Now: fixedNow, Out: &bytes.Buffer{}}

	if _, err := r.Run(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(store.recorded) != 0 {
		t.Error("cancelled run wrote rows")
	}
}

func TestRunStoreError(t *testing.T) {
	boom := errors.New("boom")
	r := &Runner{Goals: &fakeStore{err: boom}, Prompter: &fakePrompter{}, Out: &bytes.Buffer{}}
	if _, err := r.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestRunReleasesLock(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{goals: []models.Goal{{ID: 1, Name: "read", IsEnabled: true}}, loc: time.UTC}
	prompter := &fakePrompter{}
	r := &Runner{Goals: store, Prompter: prompter, Now: fixedNow, Out: &bytes.Buffer{}, LockDir: dir}

	for i := 0; i < 2; i++ {
		if _, err := r.Run(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		if _, err := os.Stat(filepath.Join(dir, constants.RunLockfileName)); !os.IsNotExist(err) {
			t.Errorf("run %d: expected lockfile to be released", i)
		}
	}
	if prompter.calls != 1 {
		t.Errorf("expected one prompt across two runs of the same day, got %d", prompter.calls)
	}
}

func TestChecklistFormBuilds(t *testing.T) {
	var selected []int64
	form := NewChecklistForm("2024-03-10", []models.Goal{{ID: 1, Name: "read"}}, &selected)
	if form == nil {
		t.Fatal("expected form")
	}
}
