package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/redis"
)

func testRuntime(t *testing.T) *Runtime {
	t.Helper()
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "quotecart_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()
	return &Runtime{
		Service:  "test",
		Config:   &config.Config{App: config.AppConfig{Env: "dev"}},
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
		Registry: reg,
	}
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	rt := testRuntime(t)
	rec := httptest.NewRecorder()
	rt.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "quotecart_test_total 1") {
		t.Fatalf("expected counter in output: %s", rec.Body.String())
	}
}

func TestServeMetricsDisabledWithoutAddr(t *testing.T) {
	if err := testRuntime(t).ServeMetrics(context.Background(), ""); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestServeMetricsStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	rt := testRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.ServeMetrics(ctx, addr) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("metrics listener never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("ServeMetrics did not return after cancel")
	}
}

func TestCloseReportsRedisFailure(t *testing.T) {
	srv := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	rt := testRuntime(t)
	rt.Redis = redis.NewFromClient(raw)

	if err := rt.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := rt.Close(); !errors.Is(err, goredis.ErrClosed) {
		t.Fatalf("expected ErrClosed on second close, got %v", err)
	}
}

func TestNewLoggerHonoursConsoleFormat(t *testing.T) {
	if !(config.AppConfig{LogFormat: "Console"}).ConsoleLogs() {
		t.Fatalf("expected console format to be detected")
	}
	if NewLogger("svc", config.AppConfig{LogLevel: "debug"}) == nil {
		t.Fatalf("expected logger")
	}
}
