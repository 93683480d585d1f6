package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/processor"
)

// eventSchema validates the inbound envelope before any processing starts.
const eventSchema = `{
	"type": "object",
	"required": ["type", "data"],
	"properties": {
		"type": {"type": "string", "minLength": 1},
		"data": {
			"type": "object",
			"required": ["instanceId", "items"],
			"properties": {
				"instanceId": {"type": "string", "minLength": 1},
				"items": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["sku", "operation", "sources"],
						"properties": {
							"sku": {"type": "string", "minLength": 1},
							"operation": {"type": "string", "enum": ["create", "update", "delete"]},
							"sources": {"type": "array", "minItems": 1}
						}
					}
				}
			}
		}
	}
}`

type eventProcessor interface {
	Process(ctx context.Context, event *models.ChangeEvent) (*processor.Summary, error)
}

type EventsHandler struct {
	processor eventProcessor
	schema    *gojsonschema.Schema
	logger    *logger.Logger
}

func NewEventsHandler(proc eventProcessor, logger *logger.Logger) (*EventsHandler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(eventSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile event schema: %w", err)
	}
	return &EventsHandler{
		processor: proc,
		schema:    schema,
		logger:    logger,
	}, nil
}

// Handle accepts one change-event batch and runs it through the pipeline.
func (h *EventsHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is not valid JSON"})
		return
	}
	if !result.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": result.Errors()[0].String()})
		return
	}

	var event models.ChangeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse event"})
		return
	}

	summary, err := h.processor.Process(c.Request.Context(), &event)
	if err != nil {
		h.logger.Error("failed to process event: %v", err)
		status := http.StatusInternalServerError
		if processor.IsClientError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type":     event.Type,
		"response": summary.Message,
	})
}
