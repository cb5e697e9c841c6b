package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/valksor/go-planbook/internal/log"
)

// maxGCDays bounds the retention window. Longer windows reach back before any
// representable creation time, so nothing can expire.
const maxGCDays = 1_000_000

// GCResult lists the plans removed by a sweep.
type GCResult struct {
	Deleted []string
}

// Expired reports whether p is a done plan created before cutoff. Plans with a
// missing or unparseable created_at never expire.
func Expired(p *Plan, cutoff time.Time) bool {
	if !p.IsDone() || p.CreatedAt == "" {
		return false
	}
	created, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return false
	}
	return created.Before(cutoff)
}

// GarbageCollect deletes done plans older than the retention window. It is
// best-effort: per-plan failures are logged and skipped. Each candidate is
// re-read under its lock before deletion so a plan reopened meanwhile survives.
func (s *Store) GarbageCollect(ctx context.Context, settings Settings) GCResult {
	var result GCResult
	if !settings.GC {
		return result
	}

	if settings.GCDays > maxGCDays {
		log.Debug("gc window exceeds any plan age", "days", settings.GCDays)
		return result
	}
	cutoff := s.now().AddDate(0, 0, -settings.GCDays)

	plans, err := s.List(ctx)
	if err != nil {
		log.Debug("gc scan failed", log.Err(err))
		return result
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, p := range plans {
		if !Expired(p, cutoff) {
			continue
		}
		wg.Go(func() {
			_, err := s.Remove(ctx, p.ID, SessionContext{}, func(current *Plan) error {
				if !Expired(current, cutoff) {
					return errNotExpired
				}
				return nil
			})
			if err != nil {
				log.Debug("gc skipped plan", log.PlanID(p.ID), log.Err(err))
				return
			}
			log.Info("gc removed plan", log.PlanID(p.ID))
			mu.Lock()
			result.Deleted = append(result.Deleted, p.ID)
			mu.Unlock()
		})
	}
	wg.Wait()

	slices.Sort(result.Deleted)
	return result
}
