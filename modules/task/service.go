package task

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/task-tracker-demo/domain/task"
	"github.com/example/task-tracker-demo/events"
	"github.com/example/task-tracker-demo/metrics"
	"github.com/go-monolith/mono/pkg/types"
)

// Validation errors.
var (
	errIDRequired      = domain.NewValidationError("id", "is required")
	errConfirmRequired = domain.NewValidationError("confirm", "must be true to delete all tasks")
)

// taskService applies defaulting and validation before touching the repository.
type taskService struct {
	repo      TaskRepository
	publisher EventPublisher
	recorder  metrics.Recorder
	logger    types.Logger
}

// NewTaskService creates the task service. A nil publisher or recorder disables
// events or metrics respectively.
func NewTaskService(repo TaskRepository, publisher EventPublisher, recorder metrics.Recorder, logger types.Logger) TaskService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &taskService{
		repo:      repo,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// List returns tasks matching the optional status and priority filters.
func (s *taskService) List(ctx context.Context, req ListTasksRequest) (resp ListTasksResponse, err error) {
	defer s.observe("list", time.Now(), &err)

	var filter domain.Filter
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return ListTasksResponse{}, err
		}
		filter.Status = &status
	}
	if req.Priority != nil {
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			return ListTasksResponse{}, err
		}
		filter.Priority = &priority
	}

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListTasksResponse{}, err
	}

	resp = ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for i := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(&tasks[i]))
	}
	return resp, nil
}

// Create validates the request, applies defaults, and persists a new task.
func (s *taskService) Create(ctx context.Context, req CreateTaskRequest) (resp TaskResponse, err error) {
	defer s.observe("create", time.Now(), &err)

	if err := domain.ValidateTitle(req.Title); err != nil {
		return TaskResponse{}, err
	}
	status, err := statusOrDefault(req.Status)
	if err != nil {
		return TaskResponse{}, err
	}
	priority, err := priorityOrDefault(req.Priority)
	if err != nil {
		return TaskResponse{}, err
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return TaskResponse{}, err
	}

	s.logger.Info("Task created", "task_id", task.ID, "status", task.Status, "priority", task.Priority)
	if err := s.publisher.TaskCreated(events.TaskCreatedEvent{
		TaskID:    task.ID,
		Title:     task.Title,
		Status:    string(task.Status),
		Priority:  string(task.Priority),
		CreatedOn: task.CreatedOn,
	}); err != nil {
		s.logger.Warn("Failed to publish TaskCreated event", "task_id", task.ID, "error", err)
	}

	return toTaskResponse(task), nil
}

// Get returns a single task.
func (s *taskService) Get(ctx context.Context, req GetTaskRequest) (resp TaskResponse, err error) {
	defer s.observe("get", time.Now(), &err)

	if req.ID == 0 {
		return TaskResponse{}, errIDRequired
	}
	task, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

// Replace overwrites every writable field of a task.
func (s *taskService) Replace(ctx context.Context, req ReplaceTaskRequest) (resp TaskResponse, err error) {
	defer s.observe("replace", time.Now(), &err)

	if req.ID == 0 {
		return TaskResponse{}, errIDRequired
	}
	if err := domain.ValidateTitle(req.Title); err != nil {
		return TaskResponse{}, err
	}
	status, err := statusOrDefault(req.Status)
	if err != nil {
		return TaskResponse{}, err
	}
	priority, err := priorityOrDefault(req.Priority)
	if err != nil {
		return TaskResponse{}, err
	}

	task, err := s.repo.Replace(ctx, req.ID, domain.Fields{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return TaskResponse{}, err
	}

	s.publishUpdated(task, []string{"title", "description", "status", "priority", "due_date"})
	return toTaskResponse(task), nil
}

// Patch applies only the fields present in the request.
func (s *taskService) Patch(ctx context.Context, req PatchTaskRequest) (resp TaskResponse, err error) {
	defer s.observe("patch", time.Now(), &err)

	if req.ID == 0 {
		return TaskResponse{}, errIDRequired
	}
	patch, err := toDomainPatch(req)
	if err != nil {
		return TaskResponse{}, err
	}
	if err := patch.Validate(); err != nil {
		return TaskResponse{}, err
	}

	task, err := s.repo.Patch(ctx, req.ID, patch)
	if err != nil {
		return TaskResponse{}, err
	}

	s.publishUpdated(task, patch.FieldNames())
	return toTaskResponse(task), nil
}

// UpdateStatus changes only the status. Any status may follow any other.
func (s *taskService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (resp TaskResponse, err error) {
	defer s.observe("update_status", time.Now(), &err)

	if req.ID == 0 {
		return TaskResponse{}, errIDRequired
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return TaskResponse{}, err
	}

	task, err := s.repo.UpdateStatus(ctx, req.ID, status)
	if err != nil {
		return TaskResponse{}, err
	}

	s.publishUpdated(task, []string{"status"})
	return toTaskResponse(task), nil
}

// Delete permanently removes a task.
func (s *taskService) Delete(ctx context.Context, req DeleteTaskRequest) (resp DeleteTaskResponse, err error) {
	defer s.observe("delete", time.Now(), &err)

	if req.ID == 0 {
		return DeleteTaskResponse{}, errIDRequired
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return DeleteTaskResponse{ID: req.ID}, err
	}

	s.logger.Info("Task deleted", "task_id", req.ID)
	if err := s.publisher.TaskDeleted(events.TaskDeletedEvent{
		TaskID:    req.ID,
		DeletedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("Failed to publish TaskDeleted event", "task_id", req.ID, "error", err)
	}

	return DeleteTaskResponse{Deleted: true, ID: req.ID, Message: "Task deleted"}, nil
}

// DeleteAll removes every task, but only when the request confirms it.
func (s *taskService) DeleteAll(ctx context.Context, req DeleteAllTasksRequest) (resp DeleteAllTasksResponse, err error) {
	defer s.observe("delete_all", time.Now(), &err)

	if !req.Confirm {
		return DeleteAllTasksResponse{}, errConfirmRequired
	}

	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return DeleteAllTasksResponse{}, err
	}

	s.logger.Warn("All tasks deleted", "count", count)
	if err := s.publisher.TasksCleared(events.TasksClearedEvent{
		Count:     count,
		ClearedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("Failed to publish TasksCleared event", "error", err)
	}

	return DeleteAllTasksResponse{Deleted: count}, nil
}

func (s *taskService) publishUpdated(task *domain.Task, fields []string) {
	if fields == nil {
		fields = []string{}
	}
	if err := s.publisher.TaskUpdated(events.TaskUpdatedEvent{
		TaskID:    task.ID,
		Fields:    fields,
		Status:    string(task.Status),
		UpdatedOn: task.UpdatedOn,
	}); err != nil {
		s.logger.Warn("Failed to publish TaskUpdated event", "task_id", task.ID, "error", err)
	}
}

func (s *taskService) observe(operation string, start time.Time, err *error) {
	s.recorder.ObserveOperation(operation, outcome(*err), time.Since(start))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrValidation):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return metrics.OutcomeStoreFailure
	default:
		return metrics.OutcomeError
	}
}

func statusOrDefault(raw *string) (domain.Status, error) {
	if raw == nil {
		return domain.DefaultStatus, nil
	}
	return domain.ParseStatus(*raw)
}

func priorityOrDefault(raw *string) (domain.Priority, error) {
	if raw == nil {
		return domain.DefaultPriority, nil
	}
	return domain.ParsePriority(*raw)
}

// toDomainPatch converts raw enum strings while preserving absent and null.
func toDomainPatch(req PatchTaskRequest) (domain.Patch, error) {
	patch := domain.Patch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}

	switch raw, ok := req.Status.Get(); {
	case ok:
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return domain.Patch{}, err
		}
		patch.Status = domain.Some(status)
	case req.Status.IsNull():
		patch.Status = domain.Null[domain.Status]()
	}

	switch raw, ok := req.Priority.Get(); {
	case ok:
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return domain.Patch{}, err
		}
		patch.Priority = domain.Some(priority)
	case req.Priority.IsNull():
		patch.Priority = domain.Null[domain.Priority]()
	}

	return patch, nil
}

// toTaskResponse converts a Task entity to a TaskResponse.
func toTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		CreatedOn:   task.CreatedOn,
		UpdatedOn:   task.UpdatedOn,
	}
}
