package assess

// Score combines a result set with a resolved weight table into the overall
// score and certification tier.
//
// Attributes absent from the table (excluded by the resolver) contribute
// nothing; attributes present with a zero weight contribute nothing but
// still required a finding. The result is deterministic for identical
// inputs because both the result set and the table iterate in registry
// order.
func Score(rs ResultSet, wt *WeightTable) (float64, CertTier) {
	var total float64
	for _, f := range rs {
		w, included := wt.Weight(f.AttributeID)
		if !included {
			continue
		}
		total += f.Score * w
	}
	if total < 0 {
		total = 0
	}
	// Rescaled weights plus bonus attributes can nudge past 100.
	if total > 100 {
		total = 100
	}
	return total, CertForScore(total)
}

// TierBreakdown computes per-tier weighted subscores for reporting.
// Each tier's Score is the weighted average over that tier's included
// attributes and WeightShare is the tier's portion of total weight, so
// summing Score*WeightShare across tiers reproduces the overall score.
func TierBreakdown(rs ResultSet, wt *WeightTable, attrs []Attribute) []TierScore {
	tierOf := make(map[string]Tier, len(attrs))
	for _, a := range attrs {
		tierOf[a.ID] = a.Tier
	}

	var weighted, share [5]float64 // indexed by tier 1-4
	for _, f := range rs {
		w, included := wt.Weight(f.AttributeID)
		if !included {
			continue
		}
		tier := tierOf[f.AttributeID]
		if tier < 1 || tier > 4 {
			continue
		}
		weighted[tier] += f.Score * w
		share[tier] += w
	}

	var out []TierScore
	for tier := Tier(1); tier <= 4; tier++ {
		if share[tier] == 0 {
			continue
		}
		out = append(out, TierScore{
			Tier:        tier,
			Score:       weighted[tier] / share[tier],
			WeightShare: share[tier],
		})
	}
	return out
}
