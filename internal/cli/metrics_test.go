package cli

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/observability"
)

func TestStartMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(io.Discard, LogInfo)
	addr, err := c.startMetrics(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("startMetrics: %v", err)
	}

	observability.Interaction().OnZoom(1.5)

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "xyflow_viewport_zoom 1.5") {
		t.Errorf("metrics output missing zoom gauge:\n%s", body)
	}
}

func TestStartMetricsBadAddress(t *testing.T) {
	t.Cleanup(observability.Reset)
	c := New(io.Discard, LogInfo)
	if _, err := c.startMetrics(context.Background(), "not-an-address"); err == nil {
		t.Error("expected listen error")
	}
}
