package dedupe

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Keyer builds the identity key for a candidate. It is the swap point for an
// alternative matching policy (e.g. similarity clustering) behind the same
// merge contract.
type Keyer func(model.CandidateLead) string

// IdentityKey is the default exact-match key: normalized name plus normalized
// company alias. Minor spelling variants produce distinct keys; that is a
// known false-negative source accepted for determinism and O(M) cost.
func IdentityKey(c model.CandidateLead) string {
	return c.NameKey + "|" + c.CompanyKey
}

// Merger collapses candidates referring to the same real-world entity.
type Merger struct {
	key      Keyer
	priority map[model.SourceID]int
}

// NewMerger creates a merger using the configured source priority order for
// tie-breaking between equally complete candidates.
func NewMerger(priority []string) *Merger {
	p := make(map[model.SourceID]int, len(priority))
	for i, s := range priority {
		p[model.SourceID(s)] = i
	}
	return &Merger{key: IdentityKey, priority: p}
}

// WithKeyer overrides the identity key policy.
func (m *Merger) WithKeyer(k Keyer) *Merger {
	m.key = k
	return m
}

// Merge groups candidates by identity key and merges each group into one
// Lead. The result is independent of input order: group membership is
// key-based and the per-group merge is commutative.
func (m *Merger) Merge(candidates []model.CandidateLead) []model.Lead {
	groups := make(map[string][]model.CandidateLead, len(candidates))
	for _, c := range candidates {
		k := m.key(c)
		groups[k] = append(groups[k], c)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	leads := make([]model.Lead, 0, len(groups))
	for _, k := range keys {
		leads = append(leads, m.mergeGroup(groups[k]))
	}

	zap.L().Debug("dedupe: merged candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("leads", len(leads)),
	)
	return leads
}

// mergeGroup folds one identity group into a single Lead. Candidates are
// ordered by completeness, then source priority, then a content fingerprint,
// so the fold result does not depend on arrival order. Each field takes its
// value from the first candidate in that order that has one.
func (m *Merger) mergeGroup(group []model.CandidateLead) model.Lead {
	sort.SliceStable(group, func(i, j int) bool {
		ci, cj := Completeness(group[i]), Completeness(group[j])
		if ci != cj {
			return ci > cj
		}
		pi, pj := m.sourceRank(group[i].Source), m.sourceRank(group[j].Source)
		if pi != pj {
			return pi < pj
		}
		return fingerprint(group[i]) < fingerprint(group[j])
	})

	best := group[0]
	lead := model.Lead{
		Name:             best.Name,
		Title:            best.Title,
		Company:          best.Company,
		PersonLocation:   best.PersonLocation,
		CompanyHQ:        best.CompanyHQ,
		FundingStage:     best.FundingStage,
		PublicationTopic: best.PublicationTopic,
		PublicationYear:  best.PublicationYear,
		UsesInVitro:      best.UsesInVitro,
		WorkMode:         best.WorkMode,
		Email:            best.Email,
		RawText:          best.RawText,
		NameKey:          best.NameKey,
		CompanyKey:       best.CompanyKey,
	}

	seen := map[model.SourceID]bool{}
	for _, c := range group {
		if !seen[c.Source] {
			seen[c.Source] = true
			lead.MergedFrom = append(lead.MergedFrom, c.Source)
		}

		fillString(&lead.Title, c.Title)
		fillString(&lead.Company, c.Company)
		fillString(&lead.PersonLocation, c.PersonLocation)
		fillString(&lead.CompanyHQ, c.CompanyHQ)
		fillString(&lead.FundingStage, c.FundingStage)
		fillString(&lead.PublicationTopic, c.PublicationTopic)
		fillString(&lead.Email, c.Email)

		// Most recent publication wins across the group.
		if c.PublicationYear > lead.PublicationYear {
			lead.PublicationYear = c.PublicationYear
		}
		// In-vitro usage is a logical OR of the contributors.
		if c.UsesInVitro {
			lead.UsesInVitro = true
		}
		if lead.WorkMode == model.WorkModeUnknown && c.WorkMode != model.WorkModeUnknown {
			lead.WorkMode = c.WorkMode
		}
		if c.RawText != "" && c.RawText != lead.RawText {
			lead.RawText += " " + c.RawText
		}
	}

	sort.Slice(lead.MergedFrom, func(i, j int) bool {
		return m.sourceRank(lead.MergedFrom[i]) < m.sourceRank(lead.MergedFrom[j])
	})

	return lead
}

func fillString(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// Completeness counts a candidate's populated fields; the most complete
// record in a group supplies contested field values.
func Completeness(c model.CandidateLead) int {
	n := 0
	for _, s := range []string{
		c.Name, c.Title, c.Company, c.PersonLocation, c.CompanyHQ,
		c.FundingStage, c.PublicationTopic, c.Email,
	} {
		if s != "" {
			n++
		}
	}
	if c.PublicationYear > 0 {
		n++
	}
	return n
}

func (m *Merger) sourceRank(s model.SourceID) int {
	if r, ok := m.priority[s]; ok {
		return r
	}
	return len(m.priority)
}

// fingerprint is a stable content digest used as the final merge tie-break,
// keeping the fold independent of collection order.
func fingerprint(c model.CandidateLead) string {
	return strings.Join([]string{
		c.Name, c.Title, c.Company, c.PersonLocation, c.CompanyHQ,
		c.FundingStage, c.PublicationTopic, strconv.Itoa(c.PublicationYear),
		c.Email, string(c.Source),
	}, "\x1f")
}
