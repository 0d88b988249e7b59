package source

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// NIHReporter queries the NIH RePORTER v2 projects search for grant-holding
// principal investigators in the last three fiscal years.
type NIHReporter struct {
	fetcher *fetcher.HTTPFetcher
	baseURL string
	now     func() time.Time
}

func NewNIHReporter(f *fetcher.HTTPFetcher) *NIHReporter {
	return &NIHReporter{
		fetcher: f,
		baseURL: "https://api.reporter.nih.gov/v2/projects/search",
		now:     time.Now,
	}
}

func (n *NIHReporter) ID() model.SourceID { return model.SourceNIH }

type nihProject struct {
	ProjectTitle           string `json:"project_title"`
	ContactPIName          string `json:"contact_pi_name"`
	PrincipalInvestigators []struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"principal_investigators"`
	OrgName          string `json:"org_name"`
	OrgCity          string `json:"org_city"`
	OrgState         string `json:"org_state"`
	OrgCountry       string `json:"org_country"`
	ProjectStartDate string `json:"project_start_date"`
	Terms            string `json:"terms"`
}

func (n *NIHReporter) Fetch(ctx context.Context, keywords []string, maxResults int) ([]model.RawRecord, error) {
	year := n.now().Year()
	fiscalYears := []int{year - 2, year - 1, year}
	query := strings.Join(quoteKeywords(keywords, 5), " OR ")

	payload := map[string]any{
		"criteria": map[string]any{
			"advanced_text_search": map[string]any{
				"search_text":  query,
				"operator":     "or",
				"search_field": "projecttitle,terms",
			},
			"fiscal_years":        fiscalYears,
			"exclude_subprojects": true,
		},
		"include_fields": []string{
			"project_num", "project_title", "contact_pi_name",
			"principal_investigators", "org_name", "org_city", "org_state",
			"org_country", "project_start_date", "project_end_date",
			"award_amount", "terms",
		},
		"offset":     0,
		"limit":      maxResults,
		"sort_field": "project_start_date",
		"sort_order": "desc",
	}

	var resp struct {
		Results []nihProject `json:"results"`
		Meta    struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := n.fetcher.PostJSON(ctx, n.baseURL, payload, &resp); err != nil {
		return nil, eris.Wrap(err, "nih: search")
	}

	var records []model.RawRecord
	for _, proj := range resp.Results {
		if rec, ok := n.extract(proj); ok {
			records = append(records, rec)
		}
	}

	zap.L().Info("nih reporter fetch complete",
		zap.Int("total", resp.Meta.Total),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (n *NIHReporter) extract(proj nihProject) (model.RawRecord, bool) {
	name := strings.TrimSpace(proj.ContactPIName)
	if name == "" && len(proj.PrincipalInvestigators) > 0 {
		pi := proj.PrincipalInvestigators[0]
		name = strings.TrimSpace(pi.FirstName + " " + pi.LastName)
	}
	if name == "" {
		return nil, false
	}

	country := proj.OrgCountry
	if country == "" {
		country = "USA"
	}

	year := ""
	if d := proj.ProjectStartDate; len(d) >= 4 {
		year = d[:4]
	}

	return model.RawRecord{
		"name":              name,
		"title":             "Principal Investigator",
		"company":           proj.OrgName,
		"person_location":   joinLocation(proj.OrgCity, proj.OrgState),
		"company_hq":        joinLocation(proj.OrgCity, proj.OrgState, country),
		"funding_stage":     "NIH Grant",
		"publication_topic": truncate(proj.ProjectTitle, 200),
		"publication_year":  year,
		"raw_text":          proj.Terms,
	}, true
}
