package record

// Field tiers used for completeness scoring. Essential fields gate whether a
// record survives validation at all; the other tiers only move the score.
var (
	essentialFields = []func(*ModelRecord) string{
		func(m *ModelRecord) string { return m.Name },
		func(m *ModelRecord) string { return m.ID },
		func(m *ModelRecord) string { return m.Provider },
	}
	importantFields = []func(*ModelRecord) string{
		func(m *ModelRecord) string { return m.Description },
		func(m *ModelRecord) string { return m.ContextWindow },
		func(m *ModelRecord) string { return m.InputPrice },
	}
	niceToHaveFields = []func(*ModelRecord) string{
		func(m *ModelRecord) string { return m.OutputPrice },
		func(m *ModelRecord) string { return m.ModelURL },
		func(m *ModelRecord) string { return m.ProviderURL },
	}
)

// MissingEssential returns the names of essential fields that are empty.
func (m *ModelRecord) MissingEssential() []string {
	names := []string{"name", "id", "provider"}
	var missing []string
	for i, get := range essentialFields {
		if get(m) == "" {
			missing = append(missing, names[i])
		}
	}
	return missing
}

// Score computes the completeness score: the populated fraction of the
// essential, important, and nice-to-have field set. Recompute after any
// field is synthesized or normalized.
func (m *ModelRecord) Score() float64 {
	total := len(essentialFields) + len(importantFields) + len(niceToHaveFields)
	populated := 0
	for _, tier := range [][]func(*ModelRecord) string{essentialFields, importantFields, niceToHaveFields} {
		for _, get := range tier {
			if get(m) != "" {
				populated++
			}
		}
	}
	return float64(populated) / float64(total)
}

// LowQualityThreshold routes records to the low-quality report bucket.
// Such records stay in the output; low completeness is informational.
const LowQualityThreshold = 0.6
