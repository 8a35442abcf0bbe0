package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenWriteRoundTripsPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flytrap.pid")

	pf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := pf.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := fmt.Sprintf("%d\n", os.Getpid())
	if string(data) != want {
		t.Errorf("pidfile contents = %q, want %q", data, want)
	}

	if err := pf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected Close to remove the pidfile, stat error = %v", err)
	}
}

func TestOpenRejectsSecondLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flytrap.pid")

	pf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := pf.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Error("expected a second Open on an already-locked pidfile to fail")
	}

	if err := pf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenSucceedsAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flytrap.pid")

	pf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := pf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pf2, err := Open(path)
	if err != nil {
		t.Fatalf("Open after Close: %v", err)
	}
	if err := pf2.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := pf2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
