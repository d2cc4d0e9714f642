package model

import (
	"testing"
	"time"
)

func TestSortFieldValid(t *testing.T) {
	tests := []struct {
		field SortField
		want  bool
	}{
		{SortByDescription, true},
		{SortByCompleted, true},
		{SortByCreatedAt, true},
		{SortByUpdatedAt, true},
		{"owner", false},
		{"", false},
		{"CreatedAt", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			if got := tt.field.Valid(); got != tt.want {
				t.Errorf("SortField(%q).Valid() = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestNewTaskResponses_EmptySlice(t *testing.T) {
	result := NewTaskResponses(nil)

	if result == nil {
		t.Fatal("expected non-nil empty slice, got nil")
	}
	if len(result) != 0 {
		t.Errorf("expected 0 tasks, got %d", len(result))
	}
}

func TestNewTaskResponse_CopiesOwner(t *testing.T) {
	now := time.Now().UTC()
	resp := NewTaskResponse(Task{
		ID:          "t1",
		OwnerID:     "u1",
		Description: "write tests",
		Completed:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	if resp.Owner != "u1" {
		t.Errorf("expected owner u1, got %q", resp.Owner)
	}
	if resp.ID != "t1" || resp.Description != "write tests" || !resp.Completed {
		t.Errorf("unexpected response: %+v", resp)
	}
}
