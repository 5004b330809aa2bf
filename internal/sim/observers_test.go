package sim

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/dynamo"
)

func TestLogObserverWritesBodiesAndPotentials(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})

	cfg := dynamo.DefaultConfig()
	cfg.Duration = 4 * cfg.Dt
	s, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.AddObserver(NewLogObserver(logger, cfg.G, 2))

	if _, err := s.Run(context.Background(), earthMoon()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// steps 2 and 4, each with two bodies and two ordered pairs
	if len(lines) != 8 {
		t.Fatalf("expected 8 log lines, got %d:\n%s", len(lines), out)
	}
	for _, want := range []string{"msg=body", "name=Moon", "msg=potential", "a=Earth", "b=Moon", "step=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "step=1 ") || strings.Contains(out, "step=3 ") {
		t.Errorf("expected only every second step to be logged:\n%s", out)
	}
}

func TestLogObserverSilentAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})

	obs := NewLogObserver(logger, 1, 0)
	obs.OnStep(dynamo.Snapshot{Step: 1, Bodies: earthMoon()})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}

func TestProgressLogsFinalStep(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel, Formatter: log.LogfmtFormatter})

	p := NewProgress(logger, 5, 4)
	for i := 1; i <= 5; i++ {
		p.OnStep(dynamo.Snapshot{Step: i})
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 progress lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "step=5") {
		t.Errorf("last line should report step 5: %q", lines[1])
	}
}
