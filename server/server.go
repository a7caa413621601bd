// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/answer"
	"github.com/poiesic/recallit/ingestion"
	"github.com/poiesic/recallit/objstore"
	"github.com/poiesic/recallit/storage"
)

var (
	// ErrAuthSecretRequired is returned when no JWT secret is configured.
	ErrAuthSecretRequired = errors.New("auth secret required")

	// ErrCaptureRepositoryRequired is returned when a capture repository is not provided.
	ErrCaptureRepositoryRequired = errors.New("capture repository required")
)

// Server is the HTTP surface over the ingestion and retrieval pipelines.
type Server struct {
	engine      *gin.Engine
	captures    storage.CaptureRepository
	sessions    storage.SessionRepository
	objects     objstore.Store
	pipeline    *ingestion.Pipeline
	coordinator *answer.Coordinator
	summarize   ai.Summarizer
	authSecret  []byte
	logger      *slog.Logger
}

// Config carries the server's collaborators.
type Config struct {
	Captures    storage.CaptureRepository
	Sessions    storage.SessionRepository
	Objects     objstore.Store
	Pipeline    *ingestion.Pipeline
	Coordinator *answer.Coordinator
	Summarizer  ai.Summarizer
	AuthSecret  []byte
	Logger      *slog.Logger

	// AllowOrigins configures CORS. Empty allows all origins.
	AllowOrigins []string
}

// New builds the server and its routes.
func New(cfg Config) (*Server, error) {
	if len(cfg.AuthSecret) == 0 {
		return nil, ErrAuthSecretRequired
	}
	if cfg.Captures == nil {
		return nil, ErrCaptureRepositoryRequired
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		captures:    cfg.Captures,
		sessions:    cfg.Sessions,
		objects:     cfg.Objects,
		pipeline:    cfg.Pipeline,
		coordinator: cfg.Coordinator,
		summarize:   cfg.Summarizer,
		authSecret:  cfg.AuthSecret,
		logger:      logger.With("component", "server"),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsConfig))

	api := engine.Group("/api", authMiddleware(cfg.AuthSecret))
	{
		api.POST("/captures", s.createCapture)
		api.GET("/captures/:id", s.getCapture)
		api.DELETE("/captures/:id", s.deleteCapture)
		api.POST("/uploads/sign", s.signUpload)
		api.POST("/sessions", s.startSession)
		api.POST("/sessions/:id/end", s.endSession)
		api.POST("/query", s.query)
	}

	s.engine = engine
	return s, nil
}

// Handler exposes the router for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.engine.Run(addr)
}

// errorPayload is the structured error body for synchronous endpoints.
type errorPayload struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorPayload{Error: message})
}
