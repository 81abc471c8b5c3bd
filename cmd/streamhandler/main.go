package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/spacesedan/storyguard/config"
	"github.com/spacesedan/storyguard/internal/db"
	"github.com/spacesedan/storyguard/internal/logging"
	"github.com/spacesedan/storyguard/internal/moderation"
	"github.com/spacesedan/storyguard/internal/streams"
	"github.com/spacesedan/storyguard/internal/validationlog"
)

var (
	service       *moderation.Service
	validationLog *validationlog.Log
)

// init runs once per Lambda cold start.
func init() {
	env := config.AppEnv()
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	slog.Info("[StreamHandler] Cold start", slog.String("environment", env))

	ctx := context.Background()
	store, err := db.Open(ctx, cfg)
	if err != nil {
		slog.Error("[StreamHandler] Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	validationLog, _, err = validationlog.FromConfig(ctx, env, cfg.OpenSearch)
	if err != nil {
		slog.Error("[StreamHandler] Validation log unavailable", slog.String("error", err.Error()))
	}

	var opts []moderation.Option
	if validationLog != nil {
		opts = append(opts, moderation.WithRecorder(validationLog))
	}
	service = moderation.NewService(store, opts...)
}

// HandleRequest validates every inserted comment in the batch and flushes
// the validation log before returning, since the runtime may freeze
// between invocations.
func HandleRequest(ctx context.Context, event events.DynamoDBEvent) (events.DynamoDBEventResponse, error) {
	resp := streams.HandleComments(ctx, service, event)

	if validationLog != nil {
		if err := validationLog.Flush(ctx); err != nil {
			slog.Error("[StreamHandler] Failed to flush validation log", slog.String("error", err.Error()))
		}
	}
	return resp, nil
}

func main() {
	lambda.Start(HandleRequest)
}
