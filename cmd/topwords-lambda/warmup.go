package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"golang.org/x/sync/errgroup"
)

const (
	// WarmupSource marks scheduled keep-warm events.
	WarmupSource = "warmup"

	// WarmupDelay keeps this instance busy long enough for child invocations to land elsewhere.
	WarmupDelay = 75 * time.Millisecond

	maxWarmupConcurrency = 50
	maxInflightInvokes   = 10
)

// WarmupEvent is the scheduled keep-warm payload.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse reports how many instances a warmup touched.
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Invoker sends one asynchronous invocation of the running function.
type Invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// IsWarmupEvent reports whether the raw event is a keep-warm ping.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var warmup WarmupEvent
	if err := json.Unmarshal(event, &warmup); err != nil {
		return nil, false
	}
	if warmup.Source != WarmupSource {
		return nil, false
	}
	if warmup.Concurrency < 0 {
		warmup.Concurrency = 0
	}
	if warmup.Concurrency > maxWarmupConcurrency {
		warmup.Concurrency = maxWarmupConcurrency
	}
	return &warmup, true
}

// HandleWarmup answers a keep-warm ping and fans out to Concurrency extra instances.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent, newInvoker func(context.Context) (Invoker, error)) (any, error) {
	warmed := 1
	if warmup.Concurrency > 0 {
		if invoker, err := newInvoker(ctx); err != nil {
			logger.WarnContext(ctx, "warmup client unavailable", "error", err)
		} else if err := selfInvoke(ctx, invoker, os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), warmup.Concurrency); err != nil {
			logger.WarnContext(ctx, "warmup fan-out failed", "error", err)
		} else {
			warmed += warmup.Concurrency
		}
	}

	time.Sleep(WarmupDelay)

	return map[string]any{
		"statusCode": http.StatusOK,
		"body":       WarmupResponse{Status: "warm", InstancesWarmed: warmed},
	}, nil
}

func newSelfInvoker(ctx context.Context) (Invoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return lambdasdk.NewFromConfig(cfg), nil
}

// selfInvoke fires count async invocations; children get concurrency 0 so they do not recurse.
// Every invocation is attempted; the first error is returned.
func selfInvoke(ctx context.Context, invoker Invoker, functionName string, count int) error {
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(maxInflightInvokes)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := invoker.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}
