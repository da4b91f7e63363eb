package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLevelsRespectVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug("hidden", nil)
	log.Info("hidden too", nil)
	log.Warn("shown", map[string]interface{}{"provider": "openai"})
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug/info leaked without verbose:\n%s", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "provider=openai") || !strings.Contains(out, "app=aiterm") {
		t.Fatalf("unexpected warn record:\n%s", out)
	}

	buf.Reset()
	New(&buf, true).Debug("visible", nil)
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Fatalf("debug missing in verbose mode: %q", buf.String())
	}
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Error("save failed", errors.New("disk full"), map[string]interface{}{"b": 2, "a": 1})
	out := buf.String()
	if !strings.Contains(out, `error="disk full"`) {
		t.Fatalf("error attr missing:\n%s", out)
	}
	if strings.Index(out, "a=1") > strings.Index(out, "b=2") {
		t.Fatalf("fields not sorted:\n%s", out)
	}
}
