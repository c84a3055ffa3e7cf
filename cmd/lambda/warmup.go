package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/lingobridge/translation-gateway/internal/engine"
	"github.com/lingobridge/translation-gateway/internal/logging"
)

const (
	warmupSource = "warmup"

	// warmupDelay keeps this instance busy long enough for the child
	// invocations to land on separate instances.
	warmupDelay = 75 * time.Millisecond
)

// warmupEvent is the scheduled payload that keeps gateway instances warm.
type warmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

type warmupResult struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// parseWarmupEvent reports whether event is a warmup ping. API Gateway
// events never carry a top-level "source" field.
func parseWarmupEvent(event json.RawMessage) (*warmupEvent, bool) {
	var ev warmupEvent
	if err := json.Unmarshal(event, &ev); err != nil || ev.Source != warmupSource {
		return nil, false
	}
	if ev.Concurrency < 0 {
		ev.Concurrency = 0
	}
	return &ev, true
}

type warmer struct {
	functionName string
	logger       *slog.Logger
	delay        time.Duration

	mu        sync.Mutex
	client    engine.Invoker
	newClient func(ctx context.Context) (engine.Invoker, error)
}

func newWarmer(functionName string, logger *slog.Logger) *warmer {
	return &warmer{
		functionName: functionName,
		logger:       logger,
		delay:        warmupDelay,
		newClient: func(ctx context.Context) (engine.Invoker, error) {
			cfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, err
			}
			return lambdasdk.NewFromConfig(cfg), nil
		},
	}
}

func (w *warmer) handle(ctx context.Context, ev *warmupEvent) map[string]any {
	warmed := 1
	if ev.Concurrency > 0 {
		n, err := w.selfInvoke(ctx, ev.Concurrency)
		if err != nil {
			w.logger.WarnContext(ctx, "warmup self-invoke failed", "requested", ev.Concurrency, "succeeded", n, logging.Err(err))
		}
		warmed += n
	}

	time.Sleep(w.delay)

	return map[string]any{
		"statusCode": 200,
		"body":       warmupResult{Status: "warm", InstancesWarmed: warmed},
	}
}

// selfInvoke fires count asynchronous warmup invocations of this function
// and returns how many were accepted. Children get concurrency 0 so they
// never fan out again.
func (w *warmer) selfInvoke(ctx context.Context, count int) (int, error) {
	if w.functionName == "" {
		return 0, errors.New("function name unknown")
	}

	client, err := w.lambdaClient(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create lambda client: %w", err)
	}

	payload, err := json.Marshal(warmupEvent{Source: warmupSource})
	if err != nil {
		return 0, err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		errs     []error
	)
	for range count {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			accepted++
		}()
	}
	wg.Wait()

	return accepted, errors.Join(errs...)
}

// lambdaClient returns the cached client, creating it on first success.
// Failures are not cached so a later warmup can retry.
func (w *warmer) lambdaClient(ctx context.Context) (engine.Invoker, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client != nil {
		return w.client, nil
	}
	client, err := w.newClient(ctx)
	if err != nil {
		return nil, err
	}
	w.client = client
	return client, nil
}
