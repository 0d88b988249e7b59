package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// ClinicalTrials queries the ClinicalTrials.gov v2 studies API for
// investigators running studies matching the keywords.
type ClinicalTrials struct {
	fetcher *fetcher.HTTPFetcher
	baseURL string
}

func NewClinicalTrials(f *fetcher.HTTPFetcher) *ClinicalTrials {
	return &ClinicalTrials{
		fetcher: f,
		baseURL: "https://clinicaltrials.gov/api/v2/studies",
	}
}

func (c *ClinicalTrials) ID() model.SourceID { return model.SourceClinicalTrials }

type ctStudy struct {
	ProtocolSection struct {
		IdentificationModule struct {
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		SponsorCollaboratorsModule struct {
			ResponsibleParty struct {
				InvestigatorFullName    string `json:"investigatorFullName"`
				InvestigatorAffiliation string `json:"investigatorAffiliation"`
			} `json:"responsibleParty"`
			LeadSponsor struct {
				Name string `json:"name"`
			} `json:"leadSponsor"`
		} `json:"sponsorCollaboratorsModule"`
		StatusModule struct {
			StartDateStruct struct {
				Date string `json:"date"`
			} `json:"startDateStruct"`
		} `json:"statusModule"`
		DescriptionModule struct {
			BriefSummary string `json:"briefSummary"`
		} `json:"descriptionModule"`
		ContactsLocationsModule struct {
			Locations []struct {
				City    string `json:"city"`
				State   string `json:"state"`
				Country string `json:"country"`
			} `json:"locations"`
		} `json:"contactsLocationsModule"`
	} `json:"protocolSection"`
}

func (c *ClinicalTrials) Fetch(ctx context.Context, keywords []string, maxResults int) ([]model.RawRecord, error) {
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}
	query := strings.Join(keywords, " OR ")

	q := url.Values{}
	q.Set("query.term", query)
	q.Set("pageSize", fmt.Sprint(min(maxResults, 100)))
	q.Set("format", "json")

	var resp struct {
		Studies []ctStudy `json:"studies"`
	}
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, eris.Wrap(err, "clinicaltrials: search")
	}

	var records []model.RawRecord
	for _, study := range resp.Studies {
		if rec, ok := c.extract(study); ok {
			records = append(records, rec)
		}
	}

	zap.L().Info("clinicaltrials fetch complete",
		zap.Int("studies", len(resp.Studies)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// extract takes the responsible-party investigator when the study names one,
// otherwise falls back to the lead sponsor as an organization-level lead.
func (c *ClinicalTrials) extract(study ctStudy) (model.RawRecord, bool) {
	proto := study.ProtocolSection

	name := strings.TrimSpace(proto.SponsorCollaboratorsModule.ResponsibleParty.InvestigatorFullName)
	affiliation := proto.SponsorCollaboratorsModule.ResponsibleParty.InvestigatorAffiliation
	if name == "" {
		name = strings.TrimSpace(proto.SponsorCollaboratorsModule.LeadSponsor.Name)
		affiliation = name
	}
	if name == "" {
		return nil, false
	}

	personLoc, companyHQ := "", ""
	if locs := proto.ContactsLocationsModule.Locations; len(locs) > 0 {
		personLoc = joinLocation(locs[0].City, locs[0].State)
		companyHQ = joinLocation(locs[0].City, locs[0].State, locs[0].Country)
	}

	year := ""
	if d := proto.StatusModule.StartDateStruct.Date; len(d) >= 4 {
		year = d[:4]
	}

	return model.RawRecord{
		"name":              name,
		"title":             "Clinical Investigator",
		"company":           affiliation,
		"person_location":   personLoc,
		"company_hq":        companyHQ,
		"funding_stage":     "Clinical Trial",
		"publication_topic": truncate(proto.IdentificationModule.BriefTitle, 200),
		"publication_year":  year,
		"raw_text":          proto.DescriptionModule.BriefSummary,
	}, true
}
