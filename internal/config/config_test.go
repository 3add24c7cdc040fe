package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SIMPLE_PAGE_SIZE", "")
	t.Setenv("FEED_PUSH_INTERVAL", "")
	t.Setenv("KAFKA_TOPIC", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SimplePageSize != 2000 {
		t.Errorf("expected simple page size 2000, got %d", cfg.SimplePageSize)
	}
	if cfg.ConfigurablePageSize != 200 {
		t.Errorf("expected configurable page size 200, got %d", cfg.ConfigurablePageSize)
	}
	if cfg.FeedPushInterval != 0 {
		t.Errorf("expected scheduled push disabled, got %s", cfg.FeedPushInterval)
	}
	if cfg.KafkaTopic != "catalog-events" {
		t.Errorf("expected default topic, got %q", cfg.KafkaTopic)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SIMPLE_PAGE_SIZE", "2")
	t.Setenv("CONFIGURABLE_PAGE_SIZE", "50")
	t.Setenv("FEED_PUSH_INTERVAL", "15m")
	t.Setenv("GRAPH_API_RPS", "4.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SimplePageSize != 2 || cfg.ConfigurablePageSize != 50 {
		t.Errorf("unexpected page sizes %d/%d", cfg.SimplePageSize, cfg.ConfigurablePageSize)
	}
	if cfg.FeedPushInterval != 15*time.Minute {
		t.Errorf("expected 15m interval, got %s", cfg.FeedPushInterval)
	}
	if cfg.GraphRPS != 4.5 {
		t.Errorf("expected rps 4.5, got %v", cfg.GraphRPS)
	}
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	if got := getEnvAsInt("SOME_INT", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}
