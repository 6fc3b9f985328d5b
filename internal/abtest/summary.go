package abtest

// Assigned is a stored record that was shown under a variant.
type Assigned interface {
	Owner() string
	AssignedVariant() Variant
}

// UserMetricsSummary is the per-user rollup wire shape.
type UserMetricsSummary struct {
	Analyses     int   `json:"analyses"`
	VariantA     int   `json:"variantA"`
	VariantB     int   `json:"variantB"`
	ConversionsA int64 `json:"conversionsA"`
	ConversionsB int64 `json:"conversionsB"`
}

// UserSummary tallies the owner's records by variant. Conversions are not
// attributed to users, so the global conversion counters are copied as-is.
func UserSummary[T Assigned](ownerID string, all []T, global Counters) UserMetricsSummary {
	summary := UserMetricsSummary{
		ConversionsA: global.ConversionsA,
		ConversionsB: global.ConversionsB,
	}
	for _, rec := range all {
		if rec.Owner() != ownerID {
			continue
		}
		summary.Analyses++
		switch rec.AssignedVariant() {
		case A:
			summary.VariantA++
		case B:
			summary.VariantB++
		}
	}
	return summary
}
