package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
)

type queryTurn struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type queryPayload struct {
	ProjectID uint64      `json:"project_id" binding:"required"`
	Query     string      `json:"query" binding:"required"`
	History   []queryTurn `json:"history"`
}

// query streams the answer as one JSON object per event, each
// terminated by a blank line. Once streaming starts, failures are
// delivered as a terminal error event, never a transport error.
func (s *Server) query(c *gin.Context) {
	if s.coordinator == nil {
		abortWithError(c, http.StatusServiceUnavailable, "answering is not configured")
		return
	}

	var payload queryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		return
	}

	history := make([]ai.Turn, 0, len(payload.History))
	for _, turn := range payload.History {
		role := ai.RoleUser
		if turn.Role == "assistant" {
			role = ai.RoleAssistant
		}
		history = append(history, ai.Turn{Role: role, Content: turn.Content})
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)

	events := s.coordinator.Answer(
		c.Request.Context(),
		scopeFrom(c),
		core.ID(payload.ProjectID),
		payload.Query,
		history,
	)

	encoder := json.NewEncoder(c.Writer)
	for event := range events {
		if err := encoder.Encode(event); err != nil {
			// Consumer went away; the coordinator notices via ctx.
			s.logger.Debug("stream write failed", "err", err)
			return
		}
		if _, err := c.Writer.WriteString("\n"); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
