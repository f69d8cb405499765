// Package main runs the draft order checkout handler as an AWS Lambda
// function behind API Gateway.
package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/lxryroom/draft-order-checkout/internal/config"
	httpapi "github.com/lxryroom/draft-order-checkout/internal/http"
	"github.com/lxryroom/draft-order-checkout/internal/obs"
	"github.com/lxryroom/draft-order-checkout/internal/shopify"
)

var handler http.Handler

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("lambda_starting")
	app := httpapi.NewApp(cfg, shopify.New(cfg))
	handler = httpapi.NewRouter(app)
	lambda.Start(handle)
}

func handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := ev.Path
	if path == "" {
		path = "/"
	}
	req, err := http.NewRequestWithContext(ctx, ev.HTTPMethod, path, bytes.NewBufferString(ev.Body))
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}

	rec := newRecorder()
	handler.ServeHTTP(rec, req)

	headers := make(map[string]string, len(rec.header))
	for k, vs := range rec.header {
		headers[k] = strings.Join(vs, ", ")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: rec.status,
		Headers:    headers,
		Body:       rec.body.String(),
	}, nil
}

// recorder adapts the shared http.Handler onto the proxy response shape.
type recorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(code int) { r.status = code }

func (r *recorder) Write(b []byte) (int, error) { return r.body.Write(b) }
