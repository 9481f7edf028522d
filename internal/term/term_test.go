package term

import (
	"bytes"
	"os"
	"testing"
)

func TestPrintf(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Printf("count: %d", 42)

	if buf.String() != "count: 42" {
		t.Errorf("Printf() = %q, want %q", buf.String(), "count: 42")
	}
}

func TestPrintln(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Println("hello", "world")

	if buf.String() != "hello world\n" {
		t.Errorf("Println() = %q, want %q", buf.String(), "hello world\n")
	}
}

func TestPrintJSON(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	err := PrintJSON(map[string]any{"ok": true})
	if err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}
	if buf.String() != "{\"ok\":true}\n" {
		t.Errorf("PrintJSON() = %q", buf.String())
	}
}

func TestPrintJSON_Unencodable(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	if err := PrintJSON(make(chan int)); err == nil {
		t.Error("PrintJSON() should fail for a channel")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written on error, got %q", buf.String())
	}
}

func TestWarnAndError(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	SetErrOutput(&buf)

	Warn("failed to load %s: %d errors", "config", 3)
	Error("socket %s missing", "/run/x.sock")

	want := "Warning: failed to load config: 3 errors\nError: socket /run/x.sock missing\n"
	if buf.String() != want {
		t.Errorf("stderr = %q, want %q", buf.String(), want)
	}
}

func TestStdout(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	if Stdout() != &buf {
		t.Error("Stdout() should return the configured writer")
	}

	SetOutput(nil)
	if Stdout() != os.Stdout {
		t.Error("SetOutput(nil) should restore os.Stdout")
	}
}

func TestIsTerminal(t *testing.T) {
	defer Reset()

	if IsTerminal(nil) {
		t.Error("IsTerminal(nil) = true, want false")
	}

	f, err := os.CreateTemp(t.TempDir(), "notatty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("IsTerminal(regular file) = true, want false")
	}

	SetTerminalCheck(func(int) bool { return true })
	if !IsTerminal(f) {
		t.Error("IsTerminal() should use the replacement check")
	}

	SetTerminalCheck(nil)
	if IsTerminal(f) {
		t.Error("SetTerminalCheck(nil) should restore the real check")
	}
}
