package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
)

type GoalFormModel struct {
	Name string
}

type SettingsFormModel struct {
	URL     string
	Keyring bool
	Days    string
	Hours   string
	Minutes string
}

// NewSettingsFormModel fills the form fields from cfg
func NewSettingsFormModel(cfg config.Config) *SettingsFormModel {
	days, hours, minutes := cfg.Timestamp.Delta.Parts()
	return &SettingsFormModel{
		URL:     cfg.Database.URL,
		Keyring: cfg.Database.Keyring,
		Days:    strconv.Itoa(days),
		Hours:   strconv.Itoa(hours),
		Minutes: strconv.Itoa(minutes),
	}
}

// Apply returns base updated with the form values
func (fm *SettingsFormModel) Apply(base config.Config) (config.Config, error) {
	values := make([]int, 3)
	for i, s := range []string{fm.Days, fm.Hours, fm.Minutes} {
		n, err := parseInt(s)
		if err != nil {
			return base, err
		}
		values[i] = n
	}

	cfg := base
	cfg.Database.URL = strings.TrimSpace(fm.URL)
	cfg.Database.Keyring = fm.Keyring
	cfg.Timestamp.Delta = config.Delta{
		Days:    config.IntPtr(values[0]),
		Hours:   config.IntPtr(values[1]),
		Minutes: config.IntPtr(values[2]),
	}
	return cfg, nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return n, nil
}

func validateInt(s string) error {
	_, err := parseInt(s)
	return err
}

// NewGoalForm creates a form for adding or renaming a goal
func NewGoalForm(title string, fm *GoalFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("goal name cannot be empty")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewSettingsForm creates a form for editing the config
func NewSettingsForm(fm *SettingsFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Database URL").
				Placeholder(constants.DatabaseURLPlaceholder).
				Value(&fm.URL),
			huh.NewConfirm().
				Title("Use OS keyring when the URL is empty").
				Value(&fm.Keyring),
			huh.NewInput().
				Title("Delta days").
				Value(&fm.Days).
				Validate(validateInt),
			huh.NewInput().
				Title("Delta hours").
				Value(&fm.Hours).
				Validate(validateInt),
			huh.NewInput().
				Title("Delta minutes").
				Value(&fm.Minutes).
				Validate(validateInt),
		),
	).WithTheme(huh.ThemeDracula())
}
