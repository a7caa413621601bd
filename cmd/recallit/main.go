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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/recallit"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/answer"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/objstore"
	"github.com/poiesic/recallit/server"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/transcript"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "recallit",
		Usage: "Capture-once, retrieve-instantly knowledge pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP capture and query server",
				Action: serveCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:     "auth-secret",
						Usage:    "HMAC secret for bearer tokens",
						Required: true,
						EnvVars:  []string{"RECALLIT_AUTH_SECRET"},
					},
					&cli.StringFlag{
						Name:  "gcs-bucket",
						Usage: "GCS bucket for attachments (empty disables object storage)",
					},
					&cli.BoolFlag{
						Name:  "transcripts",
						Usage: "Enable transcript fetching for video captures",
					},
				),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest a note from stdin or arguments and process it synchronously",
				Action:    ingestCommand,
				ArgsUsage: "[text...]",
				Flags: append(commonFlags(),
					&cli.Uint64Flag{
						Name:     "project",
						Usage:    "Project identifier",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:  "user",
						Usage: "Owner identifier",
						Value: 1,
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Ask a question and stream the answer to the terminal",
				Action:    queryCommand,
				ArgsUsage: "<question>",
				Flags: append(commonFlags(),
					&cli.Uint64Flag{
						Name:     "project",
						Usage:    "Project identifier",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:  "user",
						Usage: "Caller identifier",
						Value: 1,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible model host",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Generation model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:    "ai-token",
			Usage:   "Model host API token",
			Value:   "none",
			EnvVars: []string{"RECALLIT_AI_TOKEN"},
		},
	}
}

func newService(c *cli.Context, opts ...recallit.ServiceOption) (*recallit.Service, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithToken(c.String("ai-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts = append([]recallit.ServiceOption{recallit.WithAIConfig(aiConfig)}, opts...)
	return recallit.NewService(c.String("db"), opts...)
}

func serveCommand(c *cli.Context) error {
	var opts []recallit.ServiceOption
	if bucket := c.String("gcs-bucket"); bucket != "" {
		store, err := objstore.NewGCSStore(c.Context, bucket)
		if err != nil {
			return fmt.Errorf("failed to open object storage: %w", err)
		}
		opts = append(opts, recallit.WithObjectStore(store))
	}

	service, err := newService(c, opts...)
	if err != nil {
		return err
	}
	defer service.Close()

	var fetcher transcript.Fetcher = transcript.Disabled{}
	if c.Bool("transcripts") {
		fetcher = transcript.NewYouTubeFetcher()
	}

	pipeline, err := service.NewIngestionPipeline(fetcher)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	builder, err := service.NewContextBuilder()
	if err != nil {
		return err
	}
	defer builder.Release()

	coordinator, err := service.NewAnswerCoordinator(builder)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Captures:    service.CaptureRepository(),
		Sessions:    service.SessionRepository(),
		Objects:     service.ObjectStore(),
		Pipeline:    pipeline,
		Coordinator: coordinator,
		Summarizer:  service.Provider().Summarizer(),
		AuthSecret:  []byte(c.String("auth-secret")),
	})
	if err != nil {
		return err
	}

	return srv.Run(c.String("addr"))
}

func ingestCommand(c *cli.Context) error {
	service, err := newService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		data, err := readAllStdin()
		if err != nil {
			return err
		}
		text = data
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to ingest")
	}

	ctx := context.Background()
	scope := storageScope(c)

	capture, err := service.CaptureRepository().AddCapture(ctx, scope, &core.Capture{
		ProjectId: core.ID(c.Uint64("project")),
		Type:      core.CaptureTypeUserNote,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to store capture: %w", err)
	}

	pipeline, err := service.NewIngestionPipeline(transcript.Disabled{})
	if err != nil {
		return err
	}
	defer pipeline.Release()

	start := time.Now()
	if err := pipeline.Process(ctx, capture.Id); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Capture %d ingested in %s\n", capture.Id, time.Since(start).Round(time.Millisecond))
	return nil
}

func queryCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("a question is required")
	}

	service, err := newService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	builder, err := service.NewContextBuilder()
	if err != nil {
		return err
	}
	defer builder.Release()

	coordinator, err := service.NewAnswerCoordinator(builder)
	if err != nil {
		return err
	}

	events := coordinator.Answer(c.Context, storageScope(c), core.ID(c.Uint64("project")), question, nil)
	for event := range events {
		switch event.Type {
		case answer.EventSources:
			fmt.Fprintf(os.Stderr, "Grounded in %d source(s)\n\n", len(event.Sources))
		case answer.EventDelta:
			fmt.Print(event.Delta)
		case answer.EventDone:
			fmt.Println()
		case answer.EventError:
			return fmt.Errorf("answer failed: %s", event.Error)
		}
	}
	return nil
}

func readAllStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func storageScope(c *cli.Context) storage.Scope {
	return storage.NewScope(core.ID(c.Uint64("user")))
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
