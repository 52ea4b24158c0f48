package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskService over the services.task.* request-reply
// services of a task module.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskService backed by container, the task module's
// ServiceContainer received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskService {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) List(ctx context.Context, req ListTasksRequest) (ListTasksResponse, error) {
	return call[ListTasksRequest, ListTasksResponse](ctx, a.container, "list", req)
}

func (a *taskAdapter) Create(ctx context.Context, req CreateTaskRequest) (TaskResponse, error) {
	return call[CreateTaskRequest, TaskResponse](ctx, a.container, "create", req)
}

func (a *taskAdapter) Get(ctx context.Context, req GetTaskRequest) (TaskResponse, error) {
	return call[GetTaskRequest, TaskResponse](ctx, a.container, "get", req)
}

func (a *taskAdapter) Replace(ctx context.Context, req ReplaceTaskRequest) (TaskResponse, error) {
	return call[ReplaceTaskRequest, TaskResponse](ctx, a.container, "replace", req)
}

func (a *taskAdapter) Patch(ctx context.Context, req PatchTaskRequest) (TaskResponse, error) {
	return call[PatchTaskRequest, TaskResponse](ctx, a.container, "patch", req)
}

func (a *taskAdapter) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (TaskResponse, error) {
	return call[UpdateStatusRequest, TaskResponse](ctx, a.container, "update-status", req)
}

func (a *taskAdapter) Delete(ctx context.Context, req DeleteTaskRequest) (DeleteTaskResponse, error) {
	return call[DeleteTaskRequest, DeleteTaskResponse](ctx, a.container, "delete", req)
}

func (a *taskAdapter) DeleteAll(ctx context.Context, req DeleteAllTasksRequest) (DeleteAllTasksResponse, error) {
	return call[DeleteAllTasksRequest, DeleteAllTasksResponse](ctx, a.container, "delete-all", req)
}

// call invokes service and unwraps the reply envelope.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req Req) (Resp, error) {
	var (
		reply Reply[Resp]
		zero  Resp
	)
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&reply,
	); err != nil {
		return zero, fmt.Errorf("%s service call failed: %w", service, err)
	}
	if reply.Error != nil {
		return zero, reply.Error.Err()
	}
	if reply.Data == nil {
		return zero, fmt.Errorf("%s service returned an empty reply", service)
	}
	return *reply.Data, nil
}
