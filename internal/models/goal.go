package models

// Goal is a row of goal_info
type Goal struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	IsEnabled bool   `db:"is_enabled" json:"is_enabled"`
}

// DailyAchievement is a row of d1_goal
type DailyAchievement struct {
	GoalID   int64  `db:"goal_id" json:"goal_id"`
	Date     string `db:"day" json:"date"` // YYYY-MM-DD format
	Achieved bool   `db:"is_acheived" json:"achieved"`
}

// DuplicateAchievement is a (goal, day) pair recorded more than once
type DuplicateAchievement struct {
	GoalID int64  `db:"goal_id" json:"goal_id"`
	Date   string `db:"day" json:"date"`
	Count  int    `db:"n" json:"count"`
}
