package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhle/retrieve-bankmail/internal/model"
)

func TestFilenameUsesListingDate(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := model.Message{ID: "msg-1", Date: "02/05/2024"}
	if got := w.Filename(msg); got != "2024-05-02-msg-1.eml" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestFilenameFallsBackOnBadDate(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := model.Message{ID: "msg/2", Date: "yesterday"}
	got := w.Filename(msg)
	if !strings.HasPrefix(got, "msg_2-") || !strings.HasSuffix(got, ".eml") {
		t.Fatalf("unexpected fallback filename %q", got)
	}
	if got == w.Filename(msg) {
		t.Fatalf("expected fallback names to be unique, got %q twice", got)
	}
}

func TestWriteProducesMessageFile(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := model.Message{
		ID:      "msg-3",
		Subject: "Interest rate change",
		Sender:  "Bankwest",
		Date:    "15/01/2024",
		Content: "Your rate has changed.\nSee attached schedule.",
	}

	path, err := w.Write(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("written outside output dir: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		"Subject: Interest rate change",
		"X-Bankmail-Id: msg-3",
		"Your rate has changed.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("written file missing %q:\n%s", want, text)
		}
	}
}
