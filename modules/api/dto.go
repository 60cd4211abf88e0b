package api

import (
	"fmt"
	"time"

	"github.com/example/taskflow/modules/task"
)

// DateTimeLayout is the wire format of every timestamp: local date-time,
// second precision, no zone.
const DateTimeLayout = "2006-01-02T15:04:05"

// LocalDateTime is a timestamp rendered in DateTimeLayout.
type LocalDateTime time.Time

// NewLocalDateTime converts t to UTC and drops sub-second precision.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime(t.UTC().Truncate(time.Second))
}

// ParseLocalDateTime parses s in DateTimeLayout as a UTC time.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err != nil {
		return LocalDateTime{}, err
	}
	return LocalDateTime(t), nil
}

// Time returns the underlying time.
func (d LocalDateTime) Time() time.Time {
	return time.Time(d)
}

// String formats the time in DateTimeLayout.
func (d LocalDateTime) String() string {
	return time.Time(d).Format(DateTimeLayout)
}

// MarshalJSON implements json.Marshaler.
func (d LocalDateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *LocalDateTime) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("expected date-time string in format yyyy-MM-ddTHH:mm:ss")
	}
	parsed, err := ParseLocalDateTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TaskRequest is the request body for POST and PUT /tasks. Fields are
// pointers so that absent and empty values can be told apart during
// validation; DueDate stays a string until validated.
type TaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
}

// TaskResponse is the read view of a task.
type TaskResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	IsCompleted bool           `json:"isCompleted"`
	DueDate     *LocalDateTime `json:"dueDate"`
	CreatedAt   LocalDateTime  `json:"createdAt"`
	UpdatedAt   LocalDateTime  `json:"updatedAt"`
}

// PageResponse is one page of tasks.
type PageResponse struct {
	Content       []TaskResponse `json:"content"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Number        int            `json:"number"`
	Size          int            `json:"size"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Timestamp        LocalDateTime `json:"timestamp"`
	Status           int           `json:"status"`
	Error            string        `json:"error"`
	Message          string        `json:"message"`
	Path             string        `json:"path"`
	ValidationErrors []string      `json:"validationErrors,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

func toTaskResponse(t *task.TaskResponse) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   NewLocalDateTime(t.CreatedAt),
		UpdatedAt:   NewLocalDateTime(t.UpdatedAt),
	}
	if t.DueDate != nil {
		due := NewLocalDateTime(*t.DueDate)
		resp.DueDate = &due
	}
	return resp
}

func toPageResponse(p *task.ListTasksResponse) PageResponse {
	content := make([]TaskResponse, 0, len(p.Content))
	for i := range p.Content {
		content = append(content, toTaskResponse(&p.Content[i]))
	}
	return PageResponse{
		Content:       content,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Number:        p.Number,
		Size:          p.Size,
		First:         p.First,
		Last:          p.Last,
	}
}
