package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	tasks := app.Group(m.server.BasePath + "/tasks")
	tasks.Post("", m.createTask)
	tasks.Get("", m.listTasks)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Patch("/:id/complete", m.completeTask)
	tasks.Patch("/:id/incomplete", m.incompleteTask)
	tasks.Delete("/:id", m.deleteTask)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	healthy := true
	details := make(map[string]any, len(m.checks))
	for _, check := range m.checks {
		status := check.Health(ctx)
		healthy = healthy && status.Healthy
		details[check.Name()] = map[string]any{
			"healthy": status.Healthy,
			"message": status.Message,
		}
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: details,
		})
	}
	return c.JSON(HealthResponse{
		Status:  "healthy",
		Details: details,
	})
}

// createTask handles POST /tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	in, err := parseTaskBody(c)
	if err != nil {
		return err
	}

	created, err := m.tasks.CreateTask(c.UserContext(), in.createRequest())
	if err != nil {
		return err
	}

	m.logger.Info("Task created", "task_id", created.ID)
	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(created))
}

// listTasks handles GET /tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	req, err := parseListQuery(c, m.paging)
	if err != nil {
		return err
	}

	page, err := m.tasks.ListTasks(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(toPageResponse(page))
}

// getTask handles GET /tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	t, err := m.tasks.GetTask(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toTaskResponse(t))
}

// updateTask handles PUT /tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	in, err := parseTaskBody(c)
	if err != nil {
		return err
	}

	updated, err := m.tasks.UpdateTask(c.UserContext(), in.updateRequest(id))
	if err != nil {
		return err
	}
	return c.JSON(toTaskResponse(updated))
}

// completeTask handles PATCH /tasks/:id/complete.
func (m *APIModule) completeTask(c *fiber.Ctx) error {
	return m.setCompletion(c, true)
}

// incompleteTask handles PATCH /tasks/:id/incomplete.
func (m *APIModule) incompleteTask(c *fiber.Ctx) error {
	return m.setCompletion(c, false)
}

func (m *APIModule) setCompletion(c *fiber.Ctx, completed bool) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	t, err := m.tasks.SetCompletion(c.UserContext(), id, completed)
	if err != nil {
		return err
	}
	return c.JSON(toTaskResponse(t))
}

// deleteTask handles DELETE /tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := m.tasks.DeleteTask(c.UserContext(), id); err != nil {
		return err
	}

	m.logger.Info("Task deleted", "task_id", id)
	return c.SendStatus(fiber.StatusNoContent)
}
