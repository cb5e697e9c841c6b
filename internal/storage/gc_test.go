package storage

import (
	"context"
	"math"
	"testing"
	"time"
)

func daysAgo(d int) string {
	return fixedNow.Add(-time.Duration(d) * 24 * time.Hour).Format(TimestampLayout)
}

func TestGarbageCollect(t *testing.T) {
	s := newTestStore(t)
	fixtures := []*Plan{
		{ID: "0000000a", Status: StatusCompleted, CreatedAt: daysAgo(31)},
		{ID: "0000000b", Status: StatusCompleted, CreatedAt: daysAgo(29)},
		{ID: "0000000c", Status: StatusDraft, CreatedAt: daysAgo(365)},
		{ID: "0000000d", Status: StatusArchived, CreatedAt: daysAgo(90)},
		{ID: "0000000e", Status: StatusArchived, CreatedAt: "not a date"},
		{ID: "0000000f", Status: StatusCompleted},
		{ID: "00000010", Status: StatusActive, CreatedAt: daysAgo(400)},
	}
	for _, p := range fixtures {
		writePlan(t, s, p)
	}

	result := s.GarbageCollect(context.Background(), DefaultSettings())

	want := map[string]bool{"0000000a": true, "0000000d": true}
	if len(result.Deleted) != len(want) {
		t.Errorf("Deleted = %v, want %d plans", result.Deleted, len(want))
	}
	for _, p := range fixtures {
		if s.Exists(p.ID) == want[p.ID] {
			t.Errorf("plan %s exists = %v, want %v", p.ID, s.Exists(p.ID), !want[p.ID])
		}
	}
}

func TestGarbageCollectDisabled(t *testing.T) {
	s := newTestStore(t)
	writePlan(t, s, &Plan{ID: "0000000a", Status: StatusCompleted, CreatedAt: daysAgo(365)})

	result := s.GarbageCollect(context.Background(), Settings{GC: false, GCDays: 1})
	if len(result.Deleted) != 0 || !s.Exists("0000000a") {
		t.Errorf("GC ran while disabled: %v", result.Deleted)
	}
}

func TestGarbageCollectSkipsLocked(t *testing.T) {
	s := newTestStore(t)
	writePlan(t, s, &Plan{ID: "0000000a", Status: StatusCompleted, CreatedAt: daysAgo(60)})

	release, err := s.Locks().Acquire(context.Background(), "0000000a", SessionContext{SessionID: "busy"})
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	result := s.GarbageCollect(context.Background(), DefaultSettings())
	if len(result.Deleted) != 0 || !s.Exists("0000000a") {
		t.Errorf("locked plan was collected")
	}
}

func TestGarbageCollectLongWindows(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		deleted bool
	}{
		{name: "one day", days: 1, deleted: true},
		{name: "zero days", days: 0, deleted: true},
		{name: "centuries", days: 200000, deleted: false},
		{name: "at bound", days: maxGCDays, deleted: false},
		{name: "past bound", days: maxGCDays + 1, deleted: false},
		{name: "max int", days: math.MaxInt, deleted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writePlan(t, s, &Plan{ID: "0000000a", Status: StatusCompleted, CreatedAt: daysAgo(2)})

			result := s.GarbageCollect(context.Background(), Settings{GC: true, GCDays: tt.days})
			if got := len(result.Deleted) == 1; got != tt.deleted {
				t.Errorf("deleted = %v (%v), want %v", got, result.Deleted, tt.deleted)
			}
			if s.Exists("0000000a") == tt.deleted {
				t.Errorf("plan exists = %v after gcDays=%d", s.Exists("0000000a"), tt.days)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	cutoff := fixedNow.Add(-30 * 24 * time.Hour)
	tests := []struct {
		name string
		plan *Plan
		want bool
	}{
		{name: "old completed", plan: &Plan{Status: StatusCompleted, CreatedAt: daysAgo(31)}, want: true},
		{name: "recent completed", plan: &Plan{Status: StatusCompleted, CreatedAt: daysAgo(29)}, want: false},
		{name: "old draft", plan: &Plan{Status: StatusDraft, CreatedAt: daysAgo(365)}, want: false},
		{name: "second precision", plan: &Plan{Status: StatusArchived, CreatedAt: "2020-01-01T00:00:00Z"}, want: true},
		{name: "garbage timestamp", plan: &Plan{Status: StatusArchived, CreatedAt: "yesterday"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expired(tt.plan, cutoff); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
