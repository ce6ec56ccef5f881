package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.FrontGroupSize != 10 {
		t.Fatalf("unexpected FrontGroupSize: %d", cfg.FrontGroupSize)
	}
	if cfg.PriorityJobWorkers != 2 {
		t.Fatalf("unexpected PriorityJobWorkers: %d", cfg.PriorityJobWorkers)
	}
	if cfg.DBURL != "" {
		t.Fatalf("expected empty DBURL by default, got %q", cfg.DBURL)
	}
	if cfg.DiscordEnabled {
		t.Fatalf("expected DiscordEnabled=false by default")
	}
	if cfg.DiscordTimeout != 10*time.Second {
		t.Fatalf("unexpected DiscordTimeout: %s", cfg.DiscordTimeout)
	}
}

func TestLoad_DiscordRequiresTokenAndGuildWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("DISCORD_ENABLED", "true")
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("DISCORD_GUILD_ID", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DISCORD_ENABLED=true without token")
	}

	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DISCORD_ENABLED=true without guild id")
	}

	t.Setenv("DISCORD_GUILD_ID", "100200300400500600")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DiscordGuildID != 100200300400500600 {
		t.Fatalf("unexpected DiscordGuildID: %d", cfg.DiscordGuildID)
	}
}

func TestLoad_FrontGroupSizeValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FRONT_GROUP_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for FRONT_GROUP_SIZE=0")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/123"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/123" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		"WARN":    "warn",
		"warning": "warn",
		"error":   "error",
		"":        "info",
		"bogus":   "info",
	}
	for input, want := range cases {
		if got := parseLogLevel(input).String(); got != want {
			t.Fatalf("parseLogLevel(%q) = %q, want %q", input, got, want)
		}
	}
}
