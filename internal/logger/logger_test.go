package logger

import (
	"bytes"
	"os"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("d %d", 1)
	Info("i %s", "x")
	Warn("w")
	Section("Parse")

	got := buf.String()
	for _, want := range []string{"[DEBUG] d 1\n", "[INFO] i x\n", "[WARN] w\n", "\n=== Parse ===\n"} {
		if !bytes.Contains([]byte(got), []byte(want)) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}

func TestLevels_WhenQuiet(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("d")
	Info("i")
	Warn("w")
	Section("s")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestError_AlwaysPrints(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Error("failed: %v", "boom")

	if buf.String() != "[ERROR] failed: boom\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestScoped(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	log := For("invoker")
	log.Warn("attempt %d failed", 2)
	log.Error("gave up")

	want := "[WARN] [invoker] attempt 2 failed\n[ERROR] [invoker] gave up\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
