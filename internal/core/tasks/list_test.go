package tasks

import (
	"errors"
	"testing"

	"focusflow/internal/core/model"
)

func TestAddTrimsAndRejectsBlank(t *testing.T) {
	list := NewList(nil)

	task, err := list.Add("  write report  ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.Text != "write report" || task.ID != 1 || task.Completed {
		t.Fatalf("unexpected task: %+v", task)
	}
	if _, err := list.Add("   "); !errors.Is(err, ErrEmptyTask) {
		t.Fatalf("expected ErrEmptyTask, got %v", err)
	}
	if len(list.Items()) != 1 {
		t.Fatalf("blank task was stored")
	}
}

func TestIDsKeepIncreasingAfterDelete(t *testing.T) {
	list := NewList(nil)
	first, _ := list.Add("a")
	second, _ := list.Add("b")
	if err := list.Delete(second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	third, _ := list.Add("c")

	if third.ID <= second.ID || first.ID >= second.ID {
		t.Fatalf("ids not increasing: %d %d %d", first.ID, second.ID, third.ID)
	}
}

func TestRestoredListContinuesIDs(t *testing.T) {
	list := NewList([]model.Task{{ID: 7, Text: "old", Completed: true}, {ID: 3, Text: "older"}})

	task, _ := list.Add("new")
	if task.ID != 8 {
		t.Fatalf("expected id 8, got %d", task.ID)
	}
	if list.CompletedCount() != 1 {
		t.Fatalf("expected 1 completed, got %d", list.CompletedCount())
	}
}

func TestToggleRenameDelete(t *testing.T) {
	list := NewList(nil)
	task, _ := list.Add("read")

	toggled, err := list.Toggle(task.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("toggle: %+v %v", toggled, err)
	}
	if list.CompletedCount() != 1 {
		t.Fatalf("completed count not updated")
	}
	renamed, err := list.Rename(task.ID, " skim ")
	if err != nil || renamed.Text != "skim" {
		t.Fatalf("rename: %+v %v", renamed, err)
	}
	if _, err := list.Rename(task.ID, ""); !errors.Is(err, ErrEmptyTask) {
		t.Fatalf("expected ErrEmptyTask, got %v", err)
	}
	if err := list.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := list.Toggle(task.ID); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if err := list.Delete(task.ID); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	list := NewList(nil)
	list.Add("a")

	items := list.Items()
	items[0].Text = "mutated"
	if list.Items()[0].Text != "a" {
		t.Fatalf("Items exposed internal storage")
	}
}
