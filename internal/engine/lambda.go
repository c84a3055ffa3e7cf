package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// Invoker is the subset of the Lambda client used by LambdaTransport.
type Invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaTransport reaches an engine deployed as a Lambda function behind a
// web adapter. Requests and replies use the API Gateway v2 HTTP event shape.
type LambdaTransport struct {
	client       Invoker
	functionName string
}

// NewLambdaTransport creates a transport using the default AWS config.
func NewLambdaTransport(ctx context.Context, functionName string) (*LambdaTransport, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewLambdaTransportWithClient(lambda.NewFromConfig(cfg), functionName), nil
}

// NewLambdaTransportWithClient creates a transport around an existing invoker.
func NewLambdaTransportWithClient(client Invoker, functionName string) *LambdaTransport {
	return &LambdaTransport{client: client, functionName: functionName}
}

// Post invokes the engine function synchronously with an HTTP event for path.
func (t *LambdaTransport) Post(ctx context.Context, path string, payload any) (*Reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	event := events.APIGatewayV2HTTPRequest{
		Version:  "2.0",
		RouteKey: "POST " + path,
		RawPath:  path,
		Headers:  map[string]string{"content-type": "application/json"},
		Body:     string(body),
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: http.MethodPost,
				Path:   path,
			},
		},
	}
	input, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	result, err := t.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(t.functionName),
		Payload:      input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", t.functionName, err)
	}

	// Unhandled function errors carry {"errorMessage": ...} in the payload.
	if result.FunctionError != nil {
		return &Reply{
			StatusCode:  http.StatusBadGateway,
			ContentType: "application/json",
			Body:        result.Payload,
		}, nil
	}

	var resp events.APIGatewayV2HTTPResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	data := []byte(resp.Body)
	if resp.IsBase64Encoded {
		data, err = base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode body: %w", err)
		}
	}

	return &Reply{
		StatusCode:  resp.StatusCode,
		ContentType: header(resp.Headers, "Content-Type"),
		Body:        data,
	}, nil
}

func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
