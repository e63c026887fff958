package logger

import "testing"

func TestInitAndLevel(t *testing.T) {
	if err := Init("info", "json"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Init is once-only; a second call must not error.
	if err := Init("debug", "console"); err != nil {
		t.Fatalf("second Init: %v", err)
	}

	if L() == nil {
		t.Fatal("L() returned nil after Init")
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if err := SetLevel("not-a-level"); err == nil {
		t.Fatal("SetLevel accepted an invalid level")
	}

	if err := Sync(); err != nil {
		// Sync on stderr may fail on some platforms; only report real issues.
		t.Logf("sync: %v", err)
	}
}
