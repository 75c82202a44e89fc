// Package gateway runs storage facades inside AWS Lambda handlers behind an API
// Gateway HTTP API.
//
// Each request gets a [storage.CookieJar] seeded from its cookies. The wrapped
// handler receives an Environment whose document is that jar, so a facade over
// the cookie backend reads request cookies and its writes come back as
// Set-Cookie directives on the response:
//
//	h := gateway.Wrap(func(ctx context.Context, req events.APIGatewayV2HTTPRequest, env storage.Environment) (events.APIGatewayV2HTTPResponse, error) {
//		f, err := storage.New(ctx, storage.Cookie, storage.WithEnvironment(env))
//		...
//	})
//	lambda.Start(h.Handle)
package gateway

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/jacentio/webstorage/storage"
)

// HandlerFunc is a request handler with access to the request's storage host.
type HandlerFunc func(ctx context.Context, req events.APIGatewayV2HTTPRequest, env storage.Environment) (events.APIGatewayV2HTTPResponse, error)

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. Nil means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithHostOptions adds window stores (for example a DynamoDB table) to every
// request environment, next to the cookie jar.
func WithHostOptions(opts ...storage.HostOption) Option {
	return func(h *Handler) {
		h.host = append(h.host, opts...)
	}
}

// Handler adapts a HandlerFunc to the Lambda handler signature.
type Handler struct {
	next   HandlerFunc
	host   []storage.HostOption
	logger *slog.Logger
}

// Wrap creates a Handler around next.
func Wrap(next HandlerFunc, opts ...Option) *Handler {
	h := &Handler{next: next}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Handle serves one API Gateway request. Cookie writes made by the wrapped
// handler are appended to the response cookies.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("requestID", lc.AwsRequestID)
	}

	jar := storage.NewCookieJar(requestCookies(req)...)
	env := storage.NewEnvironment(append(h.host[:len(h.host):len(h.host)], storage.WithDocument(jar))...)

	resp, err := h.next(ctx, req, env)
	if err != nil {
		logger.Error("failed to handle request",
			"routeKey", req.RouteKey,
			"error", err,
		)
		return resp, err
	}

	pending := lastPerName(jar.Pending())
	if len(pending) > 0 {
		resp.Cookies = append(resp.Cookies, pending...)
		logger.Debug("propagated cookie writes",
			"routeKey", req.RouteKey,
			"cookies", len(pending),
		)
	}
	return resp, nil
}

// lastPerName keeps only the final directive for each cookie name, in the order
// those final directives were made. A facade probe writes and then deletes its
// key, so only the deletion is sent.
func lastPerName(directives []string) []string {
	last := make(map[string]int, len(directives))
	for i, d := range directives {
		last[cookieName(d)] = i
	}
	out := make([]string, 0, len(last))
	for i, d := range directives {
		if last[cookieName(d)] == i {
			out = append(out, d)
		}
	}
	return out
}

func cookieName(directive string) string {
	pair, _, _ := strings.Cut(directive, ";")
	name, _, _ := strings.Cut(pair, "=")
	return strings.TrimSpace(name)
}

// requestCookies returns the request's cookie pairs. Payload format 2.0 carries
// them in Cookies; the Cookie header is used when that is empty.
func requestCookies(req events.APIGatewayV2HTTPRequest) []string {
	if len(req.Cookies) > 0 {
		return req.Cookies
	}
	for name, value := range req.Headers {
		if strings.EqualFold(name, "cookie") {
			return []string{value}
		}
	}
	return nil
}
