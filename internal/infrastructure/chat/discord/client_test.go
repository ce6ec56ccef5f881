package discord

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/haneulbot/scrim-queue/internal/platform/resilience"
	"github.com/haneulbot/scrim-queue/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		BaseURL: srv.URL,
		Token:   "bot-token",
		GuildID: 900,
	})
}

func TestClient_IsLiveMember(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guilds/900/members/42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bot bot-token" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"42"}}`))
	})

	live, err := client.IsLiveMember(t.Context(), 42)
	if err != nil {
		t.Fatalf("is live member: %v", err)
	}
	if !live {
		t.Fatalf("expected member reported live")
	}
}

func TestClient_IsLiveMember_GoneIsNotAnError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":10007,"message":"Unknown Member"}`))
	})

	live, err := client.IsLiveMember(t.Context(), 42)
	if err != nil {
		t.Fatalf("departed member must not be an error: %v", err)
	}
	if live {
		t.Fatalf("expected member reported gone")
	}
}

func TestClient_SendDirect_BlockedDM(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/channels":
			_, _ = w.Write([]byte(`{"id":"777"}`))
		case "/channels/777/messages":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"code":50007,"message":"Cannot send messages to this user"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	err := client.SendDirect(t.Context(), 42, usecase.Message{Title: "Scrim", Body: "starting"})
	if !errors.Is(err, usecase.ErrDeliveryBlocked) {
		t.Fatalf("expected ErrDeliveryBlocked, got %v", err)
	}
}

func TestClient_SendDirect(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/channels":
			raw, _ := io.ReadAll(r.Body)
			var payload map[string]string
			if err := sonic.Unmarshal(raw, &payload); err != nil {
				t.Errorf("decode open-dm payload: %v", err)
			}
			if payload["recipient_id"] != "42" {
				t.Errorf("unexpected recipient: %q", payload["recipient_id"])
			}
			_, _ = w.Write([]byte(`{"id":"777"}`))
		case "/channels/777/messages":
			_, _ = w.Write([]byte(`{"id":"1234","channel_id":"777"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	if err := client.SendDirect(t.Context(), 42, usecase.Message{Title: "Scrim", Body: "starting"}); err != nil {
		t.Fatalf("send direct: %v", err)
	}
}

func TestClient_Announce_ReturnsMessageRef(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/555/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		var payload messagePayload
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			t.Errorf("decode announce payload: %v", err)
		}
		if len(payload.Components) != 1 || len(payload.Components[0].Children) != 1 {
			t.Errorf("expected a single action row with the join button, got %+v", payload.Components)
		} else if payload.Components[0].Children[0].CustomID != JoinButtonCustomID {
			t.Errorf("unexpected button custom id: %s", payload.Components[0].Children[0].CustomID)
		}
		_, _ = w.Write([]byte(`{"id":"9001","channel_id":"555"}`))
	})

	ref, err := client.Announce(t.Context(), 555, usecase.Message{Title: "Recruit", Body: "join up"})
	if err != nil {
		t.Fatalf("announce: %v", err)
	}
	if ref.ChannelID != 555 || ref.MessageID != 9001 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestClient_DisableJoinPrompt_MissingMessage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":10008,"message":"Unknown Message"}`))
	})

	err := client.DisableJoinPrompt(t.Context(), usecase.MessageRef{ChannelID: 555, MessageID: 9001})
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_CircuitBreakerRejectsWhenOpen(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Token:   "bot-token",
		GuildID: 900,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for range 2 {
		if _, err := client.IsLiveMember(t.Context(), 42); err == nil {
			t.Fatalf("expected transient failure")
		}
	}
	if calls != 2 {
		t.Fatalf("expected 2 upstream calls before the circuit opened, got %d", calls)
	}

	_, err := client.IsLiveMember(t.Context(), 42)
	if !errors.Is(err, usecase.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable from open circuit, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("open circuit must not reach upstream, got %d calls", calls)
	}
}
