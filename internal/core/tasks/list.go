// Package tasks keeps the session's to-do list.
package tasks

import (
	"errors"
	"strings"

	"focusflow/internal/core/model"
)

// ErrEmptyTask is returned when a task text is blank after trimming.
var ErrEmptyTask = errors.New("task text is empty")

// ErrUnknownTask is returned for IDs that are not in the list.
var ErrUnknownTask = errors.New("unknown task")

// List is an ordered task list with monotonically increasing IDs.
// Like the session machine it is owned by the loop goroutine.
type List struct {
	items  []model.Task
	nextID int64
}

// NewList restores a list from persisted items.
func NewList(items []model.Task) *List {
	list := &List{nextID: 1}
	for _, item := range items {
		list.items = append(list.items, item)
		if item.ID >= list.nextID {
			list.nextID = item.ID + 1
		}
	}
	return list
}

// Add appends a task and returns it.
func (list *List) Add(text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, ErrEmptyTask
	}
	task := model.Task{ID: list.nextID, Text: text}
	list.nextID++
	list.items = append(list.items, task)
	return task, nil
}

// Toggle flips the completed flag of the task.
func (list *List) Toggle(id int64) (model.Task, error) {
	index := list.indexOf(id)
	if index < 0 {
		return model.Task{}, ErrUnknownTask
	}
	list.items[index].Completed = !list.items[index].Completed
	return list.items[index], nil
}

// Rename replaces the text of the task.
func (list *List) Rename(id int64, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, ErrEmptyTask
	}
	index := list.indexOf(id)
	if index < 0 {
		return model.Task{}, ErrUnknownTask
	}
	list.items[index].Text = text
	return list.items[index], nil
}

// Delete removes the task.
func (list *List) Delete(id int64) error {
	index := list.indexOf(id)
	if index < 0 {
		return ErrUnknownTask
	}
	list.items = append(list.items[:index], list.items[index+1:]...)
	return nil
}

// Items returns a copy of the tasks in insertion order.
func (list *List) Items() []model.Task {
	items := make([]model.Task, len(list.items))
	copy(items, list.items)
	return items
}

// CompletedCount returns how many tasks are done.
func (list *List) CompletedCount() int {
	count := 0
	for _, item := range list.items {
		if item.Completed {
			count++
		}
	}
	return count
}

func (list *List) indexOf(id int64) int {
	for i, item := range list.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
