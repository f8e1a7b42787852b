package daily

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/concise/internal/models"
)

// FormPrompter shows a huh multi-select checklist
type FormPrompter struct{}

func (FormPrompter) Prompt(date string, goals []models.Goal) ([]int64, error) {
	var selected []int64
	if err := NewChecklistForm(date, goals, &selected).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrCancelled
		}
		return nil, err
	}
	return selected, nil
}

// NewChecklistForm creates the daily checklist form
func NewChecklistForm(date string, goals []models.Goal, selected *[]int64) *huh.Form {
	options := make([]huh.Option[int64], 0, len(goals))
	for _, g := range goals {
		options = append(options, huh.NewOption(g.Name, g.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int64]().
				Title("Which goals did you achieve?").
				Description(fmt.Sprintf("Logical day %s", date)).
				Options(options...).
				Value(selected),
		),
	).WithTheme(huh.ThemeDracula())
}
