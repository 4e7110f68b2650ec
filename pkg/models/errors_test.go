package models_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

func TestConnectionError_Unwrap(t *testing.T) {
	err := &models.ConnectionError{
		Device: "switch1",
		Reason: "cannot GET",
		Err:    models.ErrNotConnected,
	}

	assert.ErrorIs(t, err, models.ErrNotConnected)
	assert.Contains(t, err.Error(), "switch1")
}

func TestTimeoutError_Unwrap(t *testing.T) {
	inner := errors.New("context deadline exceeded")
	err := &models.TimeoutError{Method: "GET", URL: "https://h/x", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "timed out")
}

func TestNewRequestFailure_TruncatesBody(t *testing.T) {
	body := []byte(strings.Repeat("x", 2000))
	err := models.NewRequestFailure("GET", "https://h/x", 500, []int{200}, body)

	assert.Equal(t, 500, err.Status)
	assert.True(t, strings.HasSuffix(err.Body, "..."))
	assert.Equal(t, 515, len(err.Body))
}

func TestRequestFailure_Error(t *testing.T) {
	err := models.NewRequestFailure("POST", "https://h/x", 404, []int{200, 201}, []byte("not found"))

	msg := err.Error()
	assert.Contains(t, msg, "POST")
	assert.Contains(t, msg, "404")
	assert.Contains(t, msg, "not found")
}

func TestStatusIn_EmptySetAcceptsAny2xx(t *testing.T) {
	assert.True(t, models.StatusIn(200, nil))
	assert.True(t, models.StatusIn(204, nil))
	assert.True(t, models.StatusIn(299, nil))
	assert.False(t, models.StatusIn(301, nil))
	assert.False(t, models.StatusIn(404, nil))
}

func TestStatusIn_ExplicitSetIsExact(t *testing.T) {
	expected := []int{200, 201, 204}
	assert.True(t, models.StatusIn(201, expected))
	assert.False(t, models.StatusIn(202, expected))
	assert.False(t, models.StatusIn(500, expected))
}

func TestResult_Map(t *testing.T) {
	r := &models.Result{Decoded: map[string]any{"a": "b"}}
	assert.Equal(t, "b", r.Map()["a"])

	r = &models.Result{Decoded: "plain"}
	assert.Nil(t, r.Map())
}

func TestResult_Text(t *testing.T) {
	r := &models.Result{Body: []byte("interface Ethernet1/1")}
	assert.Equal(t, "interface Ethernet1/1", r.Text())
}
