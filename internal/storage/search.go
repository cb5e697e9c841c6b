package storage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// SearchText builds the string a plan is fuzzy-matched against.
func SearchText(p *Plan) string {
	var sb strings.Builder
	sb.WriteString(p.DisplayID())
	sb.WriteByte(' ')
	sb.WriteString(p.ID)
	sb.WriteByte(' ')
	sb.WriteString(p.Title)
	sb.WriteByte(' ')
	sb.WriteString(string(p.Status))
	if p.IsAssigned() {
		fmt.Fprintf(&sb, " assigned:%s", p.AssignedToSession)
	}
	for _, s := range p.Steps {
		sb.WriteByte(' ')
		sb.WriteString(s.Text)
	}
	return strings.ToLower(sb.String())
}

// searchSource adapts plans to fuzzy.Source.
type searchSource []string

func (s searchSource) String(i int) string { return s[i] }
func (s searchSource) Len() int            { return len(s) }

// FilterPlans keeps plans matching every whitespace-separated token of query.
// Results put incomplete plans first, then tighter matches; ties keep input order.
// A blank query returns plans unchanged.
func FilterPlans(plans []*Plan, query string) []*Plan {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return plans
	}

	source := make(searchSource, len(plans))
	for i, p := range plans {
		source[i] = SearchText(p)
	}

	// Lower cost is a better match; fuzzy scores grow with match quality.
	cost := make([]int, len(plans))
	hits := make([]int, len(plans))
	for _, token := range tokens {
		for _, m := range fuzzy.FindFrom(token, source) {
			hits[m.Index]++
			cost[m.Index] -= m.Score
		}
	}

	type ranked struct {
		plan *Plan
		cost int
	}
	matched := make([]ranked, 0, len(plans))
	for i, p := range plans {
		if hits[i] == len(tokens) {
			matched = append(matched, ranked{plan: p, cost: cost[i]})
		}
	}

	slices.SortStableFunc(matched, func(a, b ranked) int {
		if c := compareBool(a.plan.IsDone(), b.plan.IsDone()); c != 0 {
			return c
		}
		return a.cost - b.cost
	})

	out := make([]*Plan, len(matched))
	for i, r := range matched {
		out[i] = r.plan
	}
	return out
}
