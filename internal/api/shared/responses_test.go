package shared_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflow/intelligence-api/internal/api/shared"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	shared.RespondWithJSON(rec, req, http.StatusCreated, map[string]string{"status": "success"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "success", body["status"])
}

func TestRespondWithErrorIncludesTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.SetTraceID(req.Context()))
	rec := httptest.NewRecorder()
	shared.RespondWithError(rec, req, http.StatusNotFound, "Resource not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Resource not found", body.Error)
	assert.Len(t, body.TraceID, 2*shared.TraceIDLength, "hex encoding doubles the byte count")
}

func TestRespondWithErrorWithoutTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	shared.RespondWithError(rec, req, http.StatusBadRequest, "Validation error")

	var raw map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	// trace_id is omitted when no trace ID was set on the context.
	_, present := raw["trace_id"]
	assert.False(t, present)
}

func TestTraceIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := shared.SetTraceID(context.Background())
	traceID := shared.GetTraceID(ctx)
	require.Len(t, traceID, 2*shared.TraceIDLength)

	// A second context gets a different ID.
	other := shared.GetTraceID(shared.SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)

	assert.Empty(t, shared.GetTraceID(context.Background()))
}
