package api

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/taskflow/config"
	domain "github.com/example/taskflow/domain/task"
	"github.com/example/taskflow/modules/task"
	"github.com/gofiber/fiber/v2"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

// taskInput is a validated TaskRequest.
type taskInput struct {
	Title       string
	Description *string
	DueDate     *LocalDateTime
}

func (in taskInput) createRequest() *task.CreateTaskRequest {
	req := &task.CreateTaskRequest{Title: in.Title, Description: in.Description}
	if in.DueDate != nil {
		due := in.DueDate.Time()
		req.DueDate = &due
	}
	return req
}

func (in taskInput) updateRequest(id int64) *task.UpdateTaskRequest {
	create := in.createRequest()
	return &task.UpdateTaskRequest{
		ID:          id,
		Title:       create.Title,
		Description: create.Description,
		DueDate:     create.DueDate,
	}
}

// validateTaskRequest checks every field and reports all violations at once.
func validateTaskRequest(req TaskRequest) (taskInput, error) {
	var violations []string
	var in taskInput

	switch {
	case req.Title == nil:
		violations = append(violations, "title: Title is required")
	case strings.TrimSpace(*req.Title) == "":
		violations = append(violations, "title: Title is required")
		if *req.Title == "" {
			violations = append(violations, "title: Title must be between 1 and 200 characters")
		}
	case utf8.RuneCountInString(*req.Title) > maxTitleLength:
		violations = append(violations, "title: Title must be between 1 and 200 characters")
	default:
		in.Title = *req.Title
	}

	if req.Description != nil {
		if utf8.RuneCountInString(*req.Description) > maxDescriptionLength {
			violations = append(violations, "description: Description must not exceed 1000 characters")
		} else {
			in.Description = req.Description
		}
	}

	if req.DueDate != nil {
		due, err := ParseLocalDateTime(*req.DueDate)
		if err != nil {
			violations = append(violations, "dueDate: Due date must match format yyyy-MM-ddTHH:mm:ss")
		} else {
			in.DueDate = &due
		}
	}

	if len(violations) > 0 {
		return taskInput{}, validationError(violations...)
	}
	return in, nil
}

// parseTaskBody decodes and validates the request body.
func parseTaskBody(c *fiber.Ctx) (taskInput, error) {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return taskInput{}, validationError("body: " + err.Error())
	}
	return validateTaskRequest(req)
}

// parseID reads the positive integer id path parameter.
func parseID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, constraintError("id: must be a positive integer, got " + strconv.Quote(raw))
	}
	return id, nil
}

// parseListQuery reads isCompleted, title, page, size and sort. sort may be
// repeated; each value is "field" or "field,direction".
func parseListQuery(c *fiber.Ctx, paging config.PaginationConfig) (*task.ListTasksRequest, error) {
	var violations []string
	req := &task.ListTasksRequest{
		Page: domain.PageRequest{Page: 0, Size: paging.DefaultSize},
	}

	if raw := c.Query("isCompleted"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			violations = append(violations, "isCompleted: must be true or false, got "+strconv.Quote(raw))
		} else {
			req.IsCompleted = &completed
		}
	}

	req.Title = strings.TrimSpace(c.Query("title"))

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			violations = append(violations, "page: must be a non-negative integer, got "+strconv.Quote(raw))
		} else {
			req.Page.Page = page
		}
	}

	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > paging.MaxSize {
			violations = append(violations,
				"size: must be an integer between 1 and "+strconv.Itoa(paging.MaxSize)+", got "+strconv.Quote(raw))
		} else {
			req.Page.Size = size
		}
	}

	if req.Page.Size > 0 && req.Page.Page > domain.MaxPage(req.Page.Size) {
		violations = append(violations,
			"page: must not exceed "+strconv.Itoa(domain.MaxPage(req.Page.Size))+" for size "+strconv.Itoa(req.Page.Size)+", got "+strconv.Itoa(req.Page.Page))
	}

	for _, raw := range c.Context().QueryArgs().PeekMulti("sort") {
		if len(raw) == 0 {
			continue
		}
		order, err := domain.ParseSortOrder(string(raw))
		if err != nil {
			violations = append(violations, "sort: "+err.Error())
			continue
		}
		req.Page.Sort = append(req.Page.Sort, order)
	}

	if len(violations) > 0 {
		return nil, constraintError(violations...)
	}
	return req, nil
}
