package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestValidateTaskRequest(t *testing.T) {
	in, err := validateTaskRequest(TaskRequest{
		Title:       ptr("Buy milk"),
		Description: ptr("2 litres"),
		DueDate:     ptr("2025-04-01T17:30:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", in.Title)
	require.NotNil(t, in.Description)
	assert.Equal(t, "2 litres", *in.Description)
	require.NotNil(t, in.DueDate)
	assert.Equal(t, time.Date(2025, 4, 1, 17, 30, 0, 0, time.UTC), in.DueDate.Time())

	req := in.updateRequest(7)
	assert.Equal(t, int64(7), req.ID)
	assert.Equal(t, "Buy milk", req.Title)
	require.NotNil(t, req.DueDate)
	assert.True(t, req.DueDate.Equal(in.DueDate.Time()))
}

func TestValidateTaskRequest_Violations(t *testing.T) {
	_, err := validateTaskRequest(TaskRequest{Title: ptr(""), DueDate: ptr("tomorrow")})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, []string{
		"title: Title is required",
		"title: Title must be between 1 and 200 characters",
		"dueDate: Due date must match format yyyy-MM-ddTHH:mm:ss",
	}, apiErr.Details)
}

func TestLocalDateTime_JSON(t *testing.T) {
	d := NewLocalDateTime(time.Date(2025, 4, 1, 17, 30, 15, 987654321, time.FixedZone("CEST", 2*60*60)))

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-04-01T15:30:15"`, string(data))

	var back LocalDateTime
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`"2025-04-01"`), &back))
	assert.Error(t, json.Unmarshal([]byte(`12`), &back))
}

func TestTaskResponse_NullDueDate(t *testing.T) {
	data, err := json.Marshal(TaskResponse{ID: 1, Title: "x"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "dueDate")
	assert.Nil(t, raw["dueDate"])
	assert.Contains(t, raw, "description")
	assert.Nil(t, raw["description"])
}
