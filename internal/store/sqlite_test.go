package store

import (
	"context"
	"testing"

	"github.com/ryssroad/discord-ai/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveMessageIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := model.DialogRecord{
		ID:        "m1",
		Content:   "hello",
		AuthorID:  "u1",
		Timestamp: "2026-01-01T00:00:01Z",
	}

	if err := s.SaveMessage(ctx, "acct", rec, false); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := s.SaveMessage(ctx, "acct", rec, false); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	dc, err := s.GetDialogContext(ctx, "acct", "u1", 10)
	if err != nil {
		t.Fatalf("get context failed: %v", err)
	}
	if len(dc.Messages) != 1 {
		t.Errorf("expected 1 stored message after double save, got %d", len(dc.Messages))
	}
	if dc.Messages[0].Content != "hello" {
		t.Errorf("unexpected content: %q", dc.Messages[0].Content)
	}
}

func TestMessageExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.MessageExists(ctx, "acct", "m1")
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if exists {
		t.Error("message should not exist yet")
	}

	rec := model.DialogRecord{ID: "m1", AuthorID: "u1", Timestamp: "2026-01-01T00:00:01Z"}
	if err := s.SaveMessage(ctx, "acct", rec, false); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	exists, err = s.MessageExists(ctx, "acct", "m1")
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if !exists {
		t.Error("message should exist after save")
	}

	// Same id under a different account is a different record.
	exists, err = s.MessageExists(ctx, "other", "m1")
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if exists {
		t.Error("message should be scoped to the saving account")
	}
}

func TestGetDialogContextTwoPartyThread(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []struct {
		id, author, content, ts string
		isBot                   bool
	}{
		{"m1", "u1", "first from user", "2026-01-01T00:00:01Z", false},
		{"m2", "acct", "bot reply", "2026-01-01T00:00:02Z", true},
		{"m3", "u2", "unrelated third party", "2026-01-01T00:00:03Z", false},
		{"m4", "u1", "second from user", "2026-01-01T00:00:04Z", false},
	}
	for _, row := range seed {
		rec := model.DialogRecord{ID: row.id, Content: row.content, AuthorID: row.author, Timestamp: row.ts}
		if err := s.SaveMessage(ctx, "acct", rec, row.isBot); err != nil {
			t.Fatalf("save %s failed: %v", row.id, err)
		}
	}

	dc, err := s.GetDialogContext(ctx, "acct", "u1", 10)
	if err != nil {
		t.Fatalf("get context failed: %v", err)
	}

	if dc.UserID != "u1" {
		t.Errorf("unexpected user id: %q", dc.UserID)
	}
	want := []string{"m1", "m2", "m4"}
	if len(dc.Messages) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(dc.Messages))
	}
	for i, id := range want {
		if dc.Messages[i].ID != id {
			t.Errorf("position %d: expected %s, got %s (oldest-first ordering)", i, id, dc.Messages[i].ID)
		}
	}
}

func TestGetDialogContextLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := model.DialogRecord{
			ID:        string(rune('a' + i)),
			Content:   "msg",
			AuthorID:  "u1",
			Timestamp: "2026-01-01T00:00:0" + string(rune('1'+i)) + "Z",
		}
		if err := s.SaveMessage(ctx, "acct", rec, false); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	dc, err := s.GetDialogContext(ctx, "acct", "u1", 2)
	if err != nil {
		t.Fatalf("get context failed: %v", err)
	}
	if len(dc.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(dc.Messages))
	}
	// Limit keeps the most recent records.
	if dc.Messages[0].ID != "d" || dc.Messages[1].ID != "e" {
		t.Errorf("expected the two newest records, got %s, %s", dc.Messages[0].ID, dc.Messages[1].ID)
	}
}

func TestRecentLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if err := s.SaveLog(ctx, "acct", text); err != nil {
			t.Fatalf("save log failed: %v", err)
		}
	}
	if err := s.SaveLog(ctx, "other", "foreign"); err != nil {
		t.Fatalf("save log failed: %v", err)
	}

	entries, err := s.RecentLogs(ctx, "acct", 2)
	if err != nil {
		t.Fatalf("recent logs failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "three" || entries[1].Text != "two" {
		t.Errorf("expected newest-first ordering, got %q, %q", entries[0].Text, entries[1].Text)
	}
}
