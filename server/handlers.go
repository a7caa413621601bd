package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

type attachmentPayload struct {
	ObjectKey   string `json:"object_key" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	DisplayName string `json:"display_name"`
}

type capturePayload struct {
	Type        string              `json:"type" binding:"required"`
	ProjectID   uint64              `json:"project_id" binding:"required"`
	SessionID   uint64              `json:"session_id"`
	Text        string              `json:"text"`
	SourceURL   string              `json:"source_url"`
	PageTitle   string              `json:"page_title"`
	VideoStart  float64             `json:"video_start"`
	VideoEnd    float64             `json:"video_end"`
	ErrorLog    string              `json:"error_log"`
	CodeDiff    string              `json:"code_diff"`
	FileTree    string              `json:"file_tree"`
	FilePath    string              `json:"file_path"`
	Priority    int                 `json:"priority"`
	Attachments []attachmentPayload `json:"attachments"`
}

// createCapture validates the payload, persists the capture row and
// acknowledges with its identity. Enrichment runs detached; the caller
// never waits for it.
func (s *Server) createCapture(c *gin.Context) {
	var payload capturePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		return
	}

	captureType, err := core.ParseCaptureType(payload.Type)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	capture := &core.Capture{
		ProjectId:  core.ID(payload.ProjectID),
		SessionId:  core.ID(payload.SessionID),
		Type:       captureType,
		Text:       payload.Text,
		SourceURL:  payload.SourceURL,
		PageTitle:  payload.PageTitle,
		VideoStart: payload.VideoStart,
		VideoEnd:   payload.VideoEnd,
		ErrorLog:   payload.ErrorLog,
		CodeDiff:   payload.CodeDiff,
		FileTree:   payload.FileTree,
		FilePath:   payload.FilePath,
		Priority:   payload.Priority,
	}

	scope := scopeFrom(c)
	if err := core.ValidateCapture(capture); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	added, err := s.captures.AddCapture(c.Request.Context(), scope, capture)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not store capture")
		return
	}

	if len(payload.Attachments) > 0 {
		attachments := make([]*core.Attachment, 0, len(payload.Attachments))
		for _, a := range payload.Attachments {
			kind, err := core.ParseAttachmentKind(a.Kind)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, err.Error())
				return
			}
			attachments = append(attachments, &core.Attachment{
				CaptureId:   added.Id,
				ObjectKey:   a.ObjectKey,
				Kind:        kind,
				DisplayName: a.DisplayName,
			})
		}
		if _, err := s.captures.AddAttachments(c.Request.Context(), scope, attachments...); err != nil {
			s.logger.Error("error storing attachments", "capture", added.Id, "err", err)
		}
	}

	if s.pipeline != nil {
		if err := s.pipeline.Enqueue(added.Id); err != nil {
			s.logger.Error("error scheduling capture processing", "capture", added.Id, "err", err)
		}
	}

	c.JSON(http.StatusAccepted, gin.H{"id": added.Id})
}

func (s *Server) getCapture(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	capture, err := s.captures.GetCapture(c.Request.Context(), scopeFrom(c), id)
	if errors.Is(err, storage.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "capture not found")
		return
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not load capture")
		return
	}

	c.JSON(http.StatusOK, capture)
}

func (s *Server) deleteCapture(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	err := s.captures.DeleteCapture(c.Request.Context(), scopeFrom(c), id)
	if errors.Is(err, storage.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "capture not found")
		return
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not delete capture")
		return
	}

	c.Status(http.StatusNoContent)
}

type signUploadPayload struct {
	FileName string `json:"file_name" binding:"required"`
}

// signUpload issues a short-lived signed URL for a direct client
// upload. The object key is namespaced per user.
func (s *Server) signUpload(c *gin.Context) {
	if s.objects == nil {
		abortWithError(c, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	var payload signUploadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		return
	}

	scope := scopeFrom(c)
	objectKey := fmt.Sprintf("users/%d/uploads/%s/%s", scope.UserId, uuid.NewString(), payload.FileName)

	signedURL, err := s.objects.SignedUploadURL(c.Request.Context(), objectKey)
	if err != nil {
		s.logger.Error("error signing upload", "object", objectKey, "err", err)
		abortWithError(c, http.StatusInternalServerError, "could not sign upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{"object_key": objectKey, "upload_url": signedURL})
}

type startSessionPayload struct {
	ProjectID  uint64 `json:"project_id" binding:"required"`
	ActiveFile string `json:"active_file"`
}

func (s *Server) startSession(c *gin.Context) {
	var payload startSessionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		return
	}

	session, err := s.sessions.StartSession(c.Request.Context(), scopeFrom(c), &core.Session{
		ProjectId:  core.ID(payload.ProjectID),
		ActiveFile: payload.ActiveFile,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not start session")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": session.Id})
}

// endSession closes the session and schedules the debrief derivation in
// the background. Re-ending an already closed session regenerates the
// debrief.
func (s *Server) endSession(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	scope := scopeFrom(c)
	session, err := s.sessions.EndSession(c.Request.Context(), scope, id, time.Now().UTC())
	if errors.Is(err, storage.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not end session")
		return
	}

	if s.summarize != nil {
		go s.deriveDebrief(session.Id)
	}

	c.JSON(http.StatusOK, gin.H{"id": session.Id, "ended_at": session.EndedAt})
}

// deriveDebrief summarizes the session's member captures. Runs
// detached; failures are logged only.
func (s *Server) deriveDebrief(sessionID core.ID) {
	ctx := context.Background()
	scope := storage.PrivilegedScope()

	captures, err := s.captures.ListCapturesBySession(ctx, scope, sessionID)
	if err != nil {
		s.logger.Error("error loading session captures for debrief", "session", sessionID, "err", err)
		return
	}
	if len(captures) == 0 {
		return
	}

	material := ""
	for _, capture := range captures {
		body := capture.Summary
		if body == "" {
			body = capture.Text
		}
		if body == "" {
			continue
		}
		material += fmt.Sprintf("[%s]\n%s\n\n", capture.Type.String(), body)
	}
	if material == "" {
		return
	}

	debrief, err := s.summarize.Summarize(ctx, material)
	if err != nil {
		s.logger.Warn("debrief summarization failed", "session", sessionID, "err", err)
		return
	}
	if err := s.sessions.SetDebrief(ctx, scope, sessionID, debrief); err != nil {
		s.logger.Error("error persisting debrief", "session", sessionID, "err", err)
	}
}

func idParam(c *gin.Context) (core.ID, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		abortWithError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return core.ID(id), true
}
