package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/processor"
)

type fakeProcessor struct {
	summary *processor.Summary
	err     error

	events []*models.ChangeEvent
}

func (f *fakeProcessor) Process(ctx context.Context, event *models.ChangeEvent) (*processor.Summary, error) {
	f.events = append(f.events, event)
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func postEvent(t *testing.T, proc *fakeProcessor, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h, err := NewEventsHandler(proc, logger.NewNop())
	require.NoError(t, err)

	router := gin.New()
	router.POST("/api/v1/events", h.Handle)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validEvent = `{
	"type": "product-change",
	"data": {
		"instanceId": "tenant-1",
		"items": [
			{"sku": "A", "operation": "update", "sources": [{"locale": "en-US"}]}
		]
	}
}`

func TestHandleValidEvent(t *testing.T) {
	proc := &fakeProcessor{summary: &processor.Summary{
		Message: "Processed 1 items across 1 markets for tenant: tenant-1",
	}}

	w := postEvent(t, proc, validEvent)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "product-change")
	assert.Contains(t, w.Body.String(), "Processed 1 items across 1 markets for tenant: tenant-1")

	require.Len(t, proc.events, 1)
	assert.Equal(t, models.EventTypeProductChange, proc.events[0].Type)
	assert.Equal(t, "tenant-1", proc.events[0].Data.InstanceID)
}

func TestHandleRejectsMalformedJSON(t *testing.T) {
	proc := &fakeProcessor{}

	w := postEvent(t, proc, `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, proc.events)
}

func TestHandleRejectsMissingFields(t *testing.T) {
	proc := &fakeProcessor{}

	// No data.instanceId.
	w := postEvent(t, proc, `{"type": "product-change", "data": {"items": []}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, proc.events)
}

func TestHandleRejectsBadOperation(t *testing.T) {
	proc := &fakeProcessor{}

	w := postEvent(t, proc, `{
		"type": "product-change",
		"data": {
			"instanceId": "tenant-1",
			"items": [{"sku": "A", "operation": "archive", "sources": [{"locale": "en-US"}]}]
		}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, proc.events)
}

func TestHandleRejectsEmptySources(t *testing.T) {
	proc := &fakeProcessor{}

	w := postEvent(t, proc, `{
		"type": "product-change",
		"data": {
			"instanceId": "tenant-1",
			"items": [{"sku": "A", "operation": "update", "sources": []}]
		}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, proc.events)
}

func TestHandleClientErrorMapsTo400(t *testing.T) {
	proc := &fakeProcessor{err: processor.ErrTenantMismatch}

	w := postEvent(t, proc, validEvent)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleProcessingErrorMapsTo500(t *testing.T) {
	proc := &fakeProcessor{err: assert.AnError}

	w := postEvent(t, proc, validEvent)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
