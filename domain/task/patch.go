package task

import "time"

// Patch is a partial update. Absent fields are left untouched; null clears
// the nullable columns (description, due_date).
type Patch struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[Status]
	Priority    Optional[Priority]
	DueDate     Optional[time.Time]
}

// Validate rejects null on non-nullable fields and out-of-range values.
func (p Patch) Validate() error {
	if p.Title.IsNull() {
		return NewValidationError("title", "cannot be null")
	}
	if title, ok := p.Title.Get(); ok {
		if err := ValidateTitle(title); err != nil {
			return err
		}
	}
	if p.Status.IsNull() {
		return NewValidationError("status", "cannot be null")
	}
	if s, ok := p.Status.Get(); ok && !s.Valid() {
		return NewValidationError("status", "must be one of new, scheduled, in_progress, completed")
	}
	if p.Priority.IsNull() {
		return NewValidationError("priority", "cannot be null")
	}
	if pr, ok := p.Priority.Get(); ok && !pr.Valid() {
		return NewValidationError("priority", "must be one of low, medium, high")
	}
	return nil
}

// Columns returns the column assignments for the fields present in the patch.
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any, 5)
	if p.Title.IsSet() {
		cols["title"], _ = p.Title.Get()
	}
	if p.Description.IsSet() {
		cols["description"] = p.Description.Ptr()
	}
	if p.Status.IsSet() {
		cols["status"], _ = p.Status.Get()
	}
	if p.Priority.IsSet() {
		cols["priority"], _ = p.Priority.Get()
	}
	if p.DueDate.IsSet() {
		cols["due_date"] = p.DueDate.Ptr()
	}
	return cols
}

// FieldNames lists the JSON names of fields present in the patch.
func (p Patch) FieldNames() []string {
	var names []string
	if p.Title.IsSet() {
		names = append(names, "title")
	}
	if p.Description.IsSet() {
		names = append(names, "description")
	}
	if p.Status.IsSet() {
		names = append(names, "status")
	}
	if p.Priority.IsSet() {
		names = append(names, "priority")
	}
	if p.DueDate.IsSet() {
		names = append(names, "due_date")
	}
	return names
}
