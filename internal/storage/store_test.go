package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	opts = append([]StoreOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return OpenStore(filepath.Join(t.TempDir(), "plans"), opts...)
}

func writePlan(t *testing.T, s *Store, p *Plan) {
	t.Helper()
	if err := s.Save(p); err != nil {
		t.Fatalf("Save(%s): %v", p.ID, err)
	}
}

func TestStoreListEmpty(t *testing.T) {
	s := newTestStore(t)

	plans, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(plans) != 0 {
		t.Errorf("List() returned %d plans, want 0", len(plans))
	}
}

func TestStoreSaveGet(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan()
	writePlan(t, s, p)

	got, err := s.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != p.Title || got.Body != p.Body || len(got.Steps) != 2 {
		t.Errorf("Get() = %+v", got)
	}

	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != p.ID+".md" {
		t.Errorf("store contents = %v, want only the record", entries)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "deadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreListSkipsForeignFiles(t *testing.T) {
	s := newTestStore(t)
	writePlan(t, s, &Plan{ID: "00000001", Title: "one", Status: StatusDraft, CreatedAt: "2026-01-01T00:00:00.000Z"})

	// Corrupt and foreign files do not break the listing.
	if err := os.WriteFile(filepath.Join(s.Root(), "0000000f.md"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Root(), "00000001.lock"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"README.md", "0000000G.md", "123.md"} {
		if err := os.WriteFile(filepath.Join(s.Root(), name), []byte("# notes\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	plans, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("List() returned %d plans, want 2", len(plans))
	}
	for _, p := range plans {
		if p.ID == "0000000f" && p.Status != StatusDraft {
			t.Errorf("corrupt plan status = %q, want draft", p.Status)
		}
	}
}

func TestStoreNewIDUnique(t *testing.T) {
	s := newTestStore(t)
	seen := make(map[string]bool)

	for range 50 {
		p, err := s.Create(context.Background(), SessionContext{}, func(id string) *Plan {
			return &Plan{Title: "x", Status: StatusDraft, CreatedAt: s.Timestamp()}
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !ValidID(p.ID) {
			t.Errorf("invalid id %q", p.ID)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestStoreNewIDExhausted(t *testing.T) {
	// Every draw yields the same id, which already exists.
	s := newTestStore(t, WithRandom(bytes.NewReader(bytes.Repeat([]byte{0xab, 0xcd, 0xef, 0x01}, maxIDAttempts))))
	writePlan(t, s, &Plan{ID: "abcdef01", Status: StatusDraft})

	_, err := s.NewID()
	if !errors.Is(err, ErrIDExhausted) {
		t.Errorf("err = %v, want ErrIDExhausted", err)
	}
}

func TestStoreNewIDRetriesCollision(t *testing.T) {
	draws := append(bytes.Repeat([]byte{0xab, 0xcd, 0xef, 0x01}, 3), 0x00, 0x00, 0x00, 0x2a)
	s := newTestStore(t, WithRandom(bytes.NewReader(draws)))
	writePlan(t, s, &Plan{ID: "abcdef01", Status: StatusDraft})

	id, err := s.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if id != "0000002a" {
		t.Errorf("NewID() = %q, want 0000002a", id)
	}
}

func TestStoreMutateRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan()
	writePlan(t, s, p)
	boom := errors.New("rejected")

	_, err := s.Mutate(context.Background(), p.ID, SessionContext{}, func(cur *Plan) error {
		cur.Title = "changed"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want rejected", err)
	}

	got, err := s.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != p.Title {
		t.Errorf("Title = %q, record was written despite error", got.Title)
	}
}

func TestStoreMutateLocked(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan()
	writePlan(t, s, p)

	release, err := s.Locks().Acquire(context.Background(), p.ID, SessionContext{SessionID: "other"})
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	called := false
	_, err = s.Mutate(context.Background(), p.ID, SessionContext{SessionID: "me"}, func(*Plan) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrLocked) {
		t.Errorf("err = %v, want ErrLocked", err)
	}
	if called {
		t.Error("mutation ran without the lock")
	}
}

func TestStoreRemove(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan()
	writePlan(t, s, p)

	if _, err := s.Remove(context.Background(), p.ID, SessionContext{}, nil); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Exists(p.ID) {
		t.Error("record still exists")
	}
	if _, err := s.Remove(context.Background(), p.ID, SessionContext{}, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove err = %v, want ErrNotFound", err)
	}
}

func TestStoreTimestamp(t *testing.T) {
	s := newTestStore(t)
	if got, want := s.Timestamp(), "2026-03-01T12:00:00.000Z"; got != want {
		t.Errorf("Timestamp() = %q, want %q", got, want)
	}
}
