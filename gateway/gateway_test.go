package gateway_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/jacentio/webstorage/gateway"
	"github.com/jacentio/webstorage/storage"
)

func TestWrap_NilLogger(t *testing.T) {
	h := gateway.Wrap(nil, gateway.WithLogger(nil))
	if h == nil {
		t.Fatal("expected non-nil Handler")
	}
}

func TestHandle_ReadsRequestCookies(t *testing.T) {
	var got any
	h := gateway.Wrap(func(ctx context.Context, _ events.APIGatewayV2HTTPRequest, env storage.Environment) (events.APIGatewayV2HTTPResponse, error) {
		f, err := storage.New(ctx, storage.Cookie, storage.WithEnvironment(env))
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		got, err = f.GetItem(ctx, "consent", time.Time{})
		return events.APIGatewayV2HTTPResponse{StatusCode: 200}, err
	})

	req := events.APIGatewayV2HTTPRequest{Cookies: []string{"session=abc", `consent={"ads":false}`}}
	if _, err := h.Handle(context.Background(), req); err != nil {
		t.Fatalf("Handle error = %v", err)
	}

	m, ok := got.(map[string]any)
	if !ok || m["ads"] != false {
		t.Errorf("expected decoded consent cookie, got %#v", got)
	}
}

func TestHandle_CookieHeaderFallback(t *testing.T) {
	var raw string
	h := gateway.Wrap(func(_ context.Context, _ events.APIGatewayV2HTTPRequest, env storage.Environment) (events.APIGatewayV2HTTPResponse, error) {
		doc, err := env.Document()
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		raw, err = doc.Cookie()
		return events.APIGatewayV2HTTPResponse{}, err
	})

	req := events.APIGatewayV2HTTPRequest{Headers: map[string]string{"Cookie": "a=1; b=2"}}
	if _, err := h.Handle(context.Background(), req); err != nil {
		t.Fatalf("Handle error = %v", err)
	}
	if raw != "a=1; b=2" {
		t.Errorf("expected 'a=1; b=2', got %q", raw)
	}
}

func TestHandle_PropagatesCookieWrites(t *testing.T) {
	h := gateway.Wrap(func(ctx context.Context, _ events.APIGatewayV2HTTPRequest, env storage.Environment) (events.APIGatewayV2HTTPResponse, error) {
		f, err := storage.New(ctx, storage.Cookie, storage.WithEnvironment(env))
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		if err := f.SetItem(ctx, "lang", "it", time.Time{}); err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		return events.APIGatewayV2HTTPResponse{StatusCode: 200, Cookies: []string{"existing=1"}}, nil
	})

	resp, err := h.Handle(context.Background(), events.APIGatewayV2HTTPRequest{})
	if err != nil {
		t.Fatalf("Handle error = %v", err)
	}

	if len(resp.Cookies) != 3 {
		t.Fatalf("expected 3 cookies, got %d: %v", len(resp.Cookies), resp.Cookies)
	}
	if resp.Cookies[0] != "existing=1" {
		t.Errorf("expected handler cookies first, got %q", resp.Cookies[0])
	}

	var probe, lang string
	for _, c := range resp.Cookies[1:] {
		switch {
		case strings.HasPrefix(c, "test="):
			probe = c
		case strings.HasPrefix(c, "lang="):
			lang = c
		}
	}
	if !strings.Contains(probe, "1970") {
		t.Errorf("expected only the probe deletion to be sent, got %q", probe)
	}
	if !strings.HasPrefix(lang, "lang=it;expires=") || !strings.HasSuffix(lang, ";path=/") {
		t.Errorf("unexpected lang directive %q", lang)
	}
}

func TestHandle_HandlerError(t *testing.T) {
	boom := errors.New("boom")
	h := gateway.Wrap(func(ctx context.Context, _ events.APIGatewayV2HTTPRequest, env storage.Environment) (events.APIGatewayV2HTTPResponse, error) {
		doc, _ := env.Document()
		_ = doc.SetCookie("lang=it")
		return events.APIGatewayV2HTTPResponse{StatusCode: 500}, boom
	})

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
	resp, err := h.Handle(ctx, events.APIGatewayV2HTTPRequest{RouteKey: "GET /"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(resp.Cookies) != 0 {
		t.Errorf("expected no cookies on error, got %v", resp.Cookies)
	}
}

func TestHandle_HostOptions(t *testing.T) {
	local := storage.NewMemoryItemStore()
	h := gateway.Wrap(func(ctx context.Context, _ events.APIGatewayV2HTTPRequest, env storage.Environment) (events.APIGatewayV2HTTPResponse, error) {
		f, err := storage.New(ctx, storage.LocalStorage, storage.WithEnvironment(env))
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		return events.APIGatewayV2HTTPResponse{}, f.SetItem(ctx, "k", "v", time.Time{})
	}, gateway.WithHostOptions(storage.WithWindowStore(storage.LocalStorage, local)))

	resp, err := h.Handle(context.Background(), events.APIGatewayV2HTTPRequest{})
	if err != nil {
		t.Fatalf("Handle error = %v", err)
	}
	if local.Len() != 1 {
		t.Errorf("expected one key in local storage, got %d", local.Len())
	}
	if len(resp.Cookies) != 0 {
		t.Errorf("expected no cookie writes, got %v", resp.Cookies)
	}
}
