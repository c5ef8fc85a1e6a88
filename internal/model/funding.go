package model

// ScoreFactor is one component of the funding readiness score.
type ScoreFactor struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Max         int    `json:"max"`
	Description string `json:"description"`
}

// Percent returns Score as a percentage of Max.
func (f ScoreFactor) Percent() float64 {
	if f.Max <= 0 {
		return 0
	}
	return float64(f.Score) / float64(f.Max) * 100
}

// Level is a coarse Low/Medium/High rating.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Difficulty is how hard a task or change is to carry out.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// TaskStatus tracks progress on an improvement task.
type TaskStatus string

const (
	StatusCompleted  TaskStatus = "Completed"
	StatusInProgress TaskStatus = "In Progress"
	StatusNotStarted TaskStatus = "Not Started"
)

// ImprovementTask is a step that raises the readiness score.
type ImprovementTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Impact      Level      `json:"impact"`
	Difficulty  Difficulty `json:"difficulty"`
	Status      TaskStatus `json:"status"`
}
