package model

// Task is one entry of the task list.
type Task struct {
	ID        int64  `yaml:"id" json:"id"`
	Text      string `yaml:"text" json:"text"`
	Completed bool   `yaml:"completed" json:"completed"`
}
