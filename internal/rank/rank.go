package rank

import (
	"sort"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Rank orders leads by probability score descending and assigns dense
// 1-indexed ranks. Floating scores can tie, so ordering falls back to the
// number of corroborating sources (more ranks higher) and finally to the
// display name, keeping the output byte-identical across runs.
func Rank(leads []model.Lead) []model.Lead {
	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].ProbabilityScore != leads[j].ProbabilityScore {
			return leads[i].ProbabilityScore > leads[j].ProbabilityScore
		}
		if len(leads[i].MergedFrom) != len(leads[j].MergedFrom) {
			return len(leads[i].MergedFrom) > len(leads[j].MergedFrom)
		}
		return leads[i].Name < leads[j].Name
	})

	for i := range leads {
		leads[i].Rank = i + 1
	}
	return leads
}
