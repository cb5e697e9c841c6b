package storage

import (
	"cmp"
	"slices"
)

// SortPlans orders plans for display: incomplete before done, active before other
// statuses, assigned before unassigned among incomplete plans, then newest first.
func SortPlans(plans []*Plan) {
	slices.SortStableFunc(plans, comparePlans)
}

func comparePlans(a, b *Plan) int {
	if c := compareBool(a.IsDone(), b.IsDone()); c != 0 {
		return c
	}
	if c := compareBool(a.Status != StatusActive, b.Status != StatusActive); c != 0 {
		return c
	}
	if !a.IsDone() {
		if c := compareBool(!a.IsAssigned(), !b.IsAssigned()); c != 0 {
			return c
		}
	}
	// ISO-8601 strings sort chronologically; newest first.
	return cmp.Compare(b.CreatedAt, a.CreatedAt)
}

// compareBool orders false before true.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// StatusGroup is a bucket of plans sharing one status.
type StatusGroup struct {
	Status Status  `json:"status" yaml:"status"`
	Plans  []*Plan `json:"plans" yaml:"plans"`
}

// GroupByStatus buckets plans in Statuses order, keeping each bucket's input
// order. Empty buckets are omitted.
func GroupByStatus(plans []*Plan) []StatusGroup {
	buckets := make(map[Status][]*Plan, len(Statuses))
	for _, p := range plans {
		buckets[p.Status] = append(buckets[p.Status], p)
	}

	groups := make([]StatusGroup, 0, len(Statuses))
	for _, s := range Statuses {
		if len(buckets[s]) > 0 {
			groups = append(groups, StatusGroup{Status: s, Plans: buckets[s]})
		}
	}
	return groups
}
