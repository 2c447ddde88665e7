// Package main hosts the top-words skill as an AWS Lambda function behind API Gateway.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"searchkit/internal/logging"
	"searchkit/internal/skill"
)

var (
	processor = skill.DefaultProcessor()
	logger    = logging.New(os.Stderr, os.Getenv("SEARCHKIT_LOG_LEVEL"))
)

func main() {
	lambda.Start(handleEvent)
}

func handleEvent(ctx context.Context, event json.RawMessage) (any, error) {
	// warmup pings must be handled before anything else
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup, newSelfInvoker)
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}
	return handleRequest(ctx, req), nil
}

func handleRequest(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		if decoded, err := base64.StdEncoding.DecodeString(req.Body); err == nil {
			body = decoded
		}
	}

	batch, summary, err := processor.Compose(body)
	if err != nil {
		logger.WarnContext(ctx, "rejected skill request", slog.String("error", err.Error()), slog.String("request_id", req.RequestContext.RequestID))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
			Body:       "Invalid body",
		}
	}

	payload, err := batch.Encode()
	if err != nil {
		logger.ErrorContext(ctx, "encode batch", slog.String("error", err.Error()))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "internal error"}
	}

	logger.InfoContext(ctx, "skill batch processed",
		slog.Int("records", summary.Received),
		slog.Int("ok", summary.OK),
		slog.Int("invalid", summary.Invalid),
		slog.Int("failed", summary.Failed),
		slog.Int("dropped", summary.Dropped),
		slog.String("request_id", req.RequestContext.RequestID))

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}
