package mention

import (
	"sort"
	"strings"
)

// Relevance tiers. The binding contract is the ordering, not the values:
// exact label > label prefix > label substring > keyword > description > none.
// Closeness bonuses stay below the gap between tiers so a weaker tier can
// never overtake a stronger one.
const (
	scoreExact       = 1000
	scorePrefix      = 800
	scoreSubstring   = 600
	scoreKeyword     = 400
	scoreDescription = 200
	scoreNone        = 0

	maxTierBonus = 99
)

// Score rates how well an item matches a query, case-insensitively, over
// label, keywords and description. Pure and deterministic. An empty query
// scores every item 0 so priority alone decides the order.
func Score(item Item, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return scoreNone
	}

	label := strings.ToLower(item.Label)
	switch {
	case label == q:
		return scoreExact
	case strings.HasPrefix(label, q):
		return scorePrefix + closeness(len(q), len(label))
	case strings.Contains(label, q):
		idx := strings.Index(label, q)
		bonus := maxTierBonus - idx
		if bonus < 0 {
			bonus = 0
		}
		return scoreSubstring + bonus
	}

	best := scoreNone
	for _, kw := range item.Keywords {
		k := strings.ToLower(kw)
		if k == q || strings.HasPrefix(k, q) {
			best = scoreKeyword + closeness(len(q), len(k))
			break
		}
		if strings.Contains(k, q) && best < scoreKeyword {
			best = scoreKeyword
		}
	}
	if best > scoreNone {
		return best
	}

	if item.Description != "" && strings.Contains(strings.ToLower(item.Description), q) {
		return scoreDescription
	}
	return scoreNone
}

// closeness rewards queries covering more of the matched text, capped under
// the tier gap.
func closeness(queryLen, textLen int) int {
	if textLen <= 0 {
		return 0
	}
	b := queryLen * maxTierBonus / textLen
	if b > maxTierBonus {
		b = maxTierBonus
	}
	return b
}

// SortByRelevance orders items descending by priority bucket first, then by
// relevance score within a bucket. Exact ties keep their original order
// (stable sort). Items that do not match at all are not removed; excluding
// them is the caller's choice.
func SortByRelevance(items []Item, query string) {
	if len(items) < 2 {
		return
	}
	scores := make([]int, len(items))
	for i := range items {
		scores[i] = Score(items[i], query)
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if items[ia].Priority != items[ib].Priority {
			return items[ia].Priority > items[ib].Priority
		}
		return scores[ia] > scores[ib]
	})
	sorted := make([]Item, len(items))
	for i, idx := range order {
		sorted[i] = items[idx]
	}
	copy(items, sorted)
}
