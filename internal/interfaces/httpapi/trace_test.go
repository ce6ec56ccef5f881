package httpapi

import "testing"

func TestShouldTraceRequest_HealthPaths(t *testing.T) {
	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz"} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected %q to be excluded from tracing", path)
		}
	}
}

func TestShouldTraceRequest_APIPaths(t *testing.T) {
	for _, path := range []string{"/v1/players/register", "/v1/queue/join", "/v1/rankings", "/v1/admin/front-group"} {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected %q to be traced", path)
		}
	}
}

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	if shouldCreateHTTPAPISpan("usecase.QueueService.Join") {
		t.Fatalf("expected span names outside the handler package to be rejected")
	}
	if !shouldCreateHTTPAPISpan("httpapi.Handler.JoinQueue") {
		t.Fatalf("expected handler span name to be accepted")
	}
}
