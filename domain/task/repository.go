package task

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repository provides access to task storage.
// Every write runs in its own transaction and commits before returning.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used for created_on and updated_on.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Migrate creates or updates the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Task{})
}

// List returns the tasks matching filter, ordered by id ascending.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Task, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	tasks := make([]Task, 0)
	if err := query.Find(&tasks).Error; err != nil {
		return nil, storeError("list tasks", err)
	}
	return tasks, nil
}

// Create saves a new task. The store assigns the id; timestamps come from the
// repository clock. Empty status and priority fall back to their defaults.
func (r *Repository) Create(ctx context.Context, task *Task) error {
	if err := ValidateTitle(task.Title); err != nil {
		return err
	}
	if task.Status == "" {
		task.Status = DefaultStatus
	}
	if task.Priority == "" {
		task.Priority = DefaultPriority
	}
	if !task.Status.Valid() {
		return NewValidationError("status", "must be one of new, scheduled, in_progress, completed")
	}
	if !task.Priority.Valid() {
		return NewValidationError("priority", "must be one of low, medium, high")
	}

	now := r.now()
	task.ID = 0
	task.CreatedOn = now
	task.UpdatedOn = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(task).Error
	})
	if err != nil {
		return storeError("create task", err)
	}
	return nil
}

// GetByID retrieves a task by its id.
func (r *Repository) GetByID(ctx context.Context, id uint) (*Task, error) {
	var task Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError("get task", err)
	}
	return &task, nil
}

// Replace overwrites every writable field of the task. id and created_on are kept.
func (r *Repository) Replace(ctx context.Context, id uint, fields Fields) (*Task, error) {
	if err := ValidateTitle(fields.Title); err != nil {
		return nil, err
	}
	if !fields.Status.Valid() {
		return nil, NewValidationError("status", "must be one of new, scheduled, in_progress, completed")
	}
	if !fields.Priority.Valid() {
		return nil, NewValidationError("priority", "must be one of low, medium, high")
	}

	return r.update(ctx, "replace task", id, map[string]any{
		"title":       fields.Title,
		"description": fields.Description,
		"status":      fields.Status,
		"priority":    fields.Priority,
		"due_date":    fields.DueDate,
	})
}

// Patch applies only the fields present in patch.
func (r *Repository) Patch(ctx context.Context, id uint, patch Patch) (*Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return r.update(ctx, "patch task", id, patch.Columns())
}

// UpdateStatus changes only the status column.
func (r *Repository) UpdateStatus(ctx context.Context, id uint, status Status) (*Task, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", "must be one of new, scheduled, in_progress, completed")
	}
	return r.update(ctx, "update task status", id, map[string]any{"status": status})
}

// update locks nothing; concurrent writers to the same row are last-write-wins.
func (r *Repository) update(ctx context.Context, op string, id uint, cols map[string]any) (*Task, error) {
	cols["updated_on"] = r.now()

	var updated Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Task
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&Task{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}
		// Scan into a zero value so columns set to NULL come back nil.
		return tx.First(&updated, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError(op, err)
	}
	return &updated, nil
}

// Delete permanently removes a task by id.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Task{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return storeError("delete task", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll permanently removes every task and returns the number of rows removed.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("1 = 1").Delete(&Task{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, storeError("delete all tasks", err)
	}
	return affected, nil
}
