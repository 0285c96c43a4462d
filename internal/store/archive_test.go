package store_test

import (
	"context"
	"testing"

	"github.com/nhle/retrieve-bankmail/internal/model"
	"github.com/nhle/retrieve-bankmail/tests/testutil"
)

func TestArchiveHasAndRecord(t *testing.T) {
	a := testutil.NewTestArchive(t)
	ctx := context.Background()

	seen, err := a.Has(ctx, "msg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatal("expected msg-1 to be unseen")
	}

	msg := model.Message{
		ID:      "msg-1",
		Subject: "Term deposit maturity",
		Sender:  "Bankwest",
		Date:    "02/05/2024",
	}
	if err := a.Record(ctx, msg, "/tmp/2024-05-02-msg-1.eml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen, err = a.Has(ctx, "msg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Fatal("expected msg-1 to be seen after Record")
	}

	count, err := a.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 indexed message, got %d", count)
	}
}

func TestArchiveRecordIsIdempotent(t *testing.T) {
	a := testutil.NewTestArchive(t)
	ctx := context.Background()

	msg := model.Message{ID: "msg-2", Subject: "Statement available"}
	for i := 0; i < 2; i++ {
		if err := a.Record(ctx, msg, "/tmp/msg-2.eml"); err != nil {
			t.Fatalf("unexpected error on write %d: %v", i, err)
		}
	}

	count, err := a.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 indexed message, got %d", count)
	}
}
