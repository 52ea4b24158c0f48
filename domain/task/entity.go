package task

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters in a task title.
const MaxTitleLength = 255

// Status represents the state of a task.
type Status string

const (
	StatusNew        Status = "new"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// DefaultStatus is assigned to tasks created without an explicit status.
const DefaultStatus = StatusNew

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusScheduled, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", NewValidationError("status", "must be one of new, scheduled, in_progress, completed")
	}
	return s, nil
}

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is assigned to tasks created without an explicit priority.
const DefaultPriority = PriorityMedium

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts a raw string into a Priority.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", NewValidationError("priority", "must be one of low, medium, high")
	}
	return p, nil
}

// ValidateTitle checks that a title is present and fits the column.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError("title", "must be at most 255 characters")
	}
	return nil
}

// Task is the persisted to-do item.
type Task struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      Status     `gorm:"size:20;not null;default:new;index" json:"status"`
	Priority    Priority   `gorm:"size:20;not null;default:medium;index" json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedOn   time.Time  `gorm:"not null" json:"created_on"`
	UpdatedOn   time.Time  `gorm:"not null" json:"updated_on"`
}

// TableName returns the table name for Task model.
func (Task) TableName() string {
	return "tasks"
}

// Fields is the full writable field set used by Replace.
type Fields struct {
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
}

// Filter restricts List results. Nil fields apply no restriction.
type Filter struct {
	Status   *Status
	Priority *Priority
}
