package api

import (
	"github.com/example/task-tracker-demo/modules/activity"
	"github.com/example/task-tracker-demo/modules/task"
	"github.com/gofiber/fiber/v2"
)

// defaultActivityLimit is used when /activity is called without ?limit.
const defaultActivityLimit = 50

// rootHandler handles GET /.
func (m *APIModule) rootHandler(c *fiber.Ctx) error {
	return c.JSON(MessageResponse{Message: "TODO API is running"})
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	status := m.tasks.Health(c.UserContext())

	resp := HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"task": status.Message,
		},
	}
	for k, v := range status.Details {
		resp.Details[k] = v
	}

	if !status.Healthy {
		resp.Status = "unhealthy"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// listTasks handles GET /api/v1/tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	resp, err := m.service.List(c.UserContext(), listRequest(c))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp)
}

// listTasksBare handles GET /tasks/ for clients that expect a plain array.
func (m *APIModule) listTasksBare(c *fiber.Ctx) error {
	resp, err := m.service.List(c.UserContext(), listRequest(c))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp.Tasks)
}

func listRequest(c *fiber.Ctx) task.ListTasksRequest {
	var req task.ListTasksRequest
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if priority := c.Query("priority"); priority != "" {
		req.Priority = &priority
	}
	return req
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req task.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c, "Invalid request body")
	}

	resp, err := m.service.Create(c.UserContext(), req)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// getTask handles GET /api/v1/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task id must be a positive integer")
	}

	resp, err := m.service.Get(c.UserContext(), task.GetTaskRequest{ID: id})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp)
}

// replaceTask handles PUT /api/v1/tasks/:id.
func (m *APIModule) replaceTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task id must be a positive integer")
	}

	var req task.ReplaceTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c, "Invalid request body")
	}
	req.ID = id

	resp, err := m.service.Replace(c.UserContext(), req)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp)
}

// patchTask handles PATCH /api/v1/tasks/:id.
func (m *APIModule) patchTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task id must be a positive integer")
	}

	var req task.PatchTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c, "Invalid request body")
	}
	req.ID = id

	resp, err := m.service.Patch(c.UserContext(), req)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp)
}

// updateTaskStatus handles PATCH /api/v1/tasks/:id/status.
func (m *APIModule) updateTaskStatus(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task id must be a positive integer")
	}

	var body UpdateStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidRequest(c, "Invalid request body")
	}

	resp, err := m.service.UpdateStatus(c.UserContext(), task.UpdateStatusRequest{ID: id, Status: body.Status})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp)
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task id must be a positive integer")
	}

	resp, err := m.service.Delete(c.UserContext(), task.DeleteTaskRequest{ID: id})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp)
}

// deleteAllTasks handles DELETE /api/v1/tasks?confirm=true.
func (m *APIModule) deleteAllTasks(c *fiber.Ctx) error {
	resp, err := m.service.DeleteAll(c.UserContext(), task.DeleteAllTasksRequest{
		Confirm: c.QueryBool("confirm", false),
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp)
}

// listActivity handles GET /api/v1/activity.
func (m *APIModule) listActivity(c *fiber.Ctx) error {
	limit := activity.ClampLimit(c.QueryInt("limit", defaultActivityLimit))

	entries := m.feed.Recent(limit)
	return c.JSON(ActivityResponse{
		Entries: entries,
		Total:   len(entries),
	})
}

// taskID parses the :id path parameter.
func taskID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
