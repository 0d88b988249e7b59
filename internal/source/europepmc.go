package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// EuropePMC queries the Europe PMC REST search endpoint for recent
// publications matching the keywords.
type EuropePMC struct {
	fetcher *fetcher.HTTPFetcher
	baseURL string
	now     func() time.Time
}

func NewEuropePMC(f *fetcher.HTTPFetcher) *EuropePMC {
	return &EuropePMC{
		fetcher: f,
		baseURL: "https://www.ebi.ac.uk/europepmc/webservices/rest/search",
		now:     time.Now,
	}
}

func (e *EuropePMC) ID() model.SourceID { return model.SourceEuropePMC }

type epmcArticle struct {
	Title      string `json:"title"`
	PubYear    string `json:"pubYear"`
	Abstract   string `json:"abstractText"`
	AuthorList struct {
		Author []epmcAuthor `json:"author"`
	} `json:"authorList"`
}

type epmcAuthor struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	AuthorID  *struct {
		Value string `json:"value"`
	} `json:"authorId"`
	// Either a plain string or a list of strings depending on result type.
	Affiliation json.RawMessage `json:"affiliation"`
}

func (a epmcAuthor) affiliationText() string {
	if len(a.Affiliation) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(a.Affiliation, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(a.Affiliation, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

func (e *EuropePMC) Fetch(ctx context.Context, keywords []string, maxResults int) ([]model.RawRecord, error) {
	year := e.now().Year()
	query := strings.Join(quoteKeywords(keywords, 5), " OR ")
	query += fmt.Sprintf(" AND (PUB_YEAR:[%d TO %d])", year-2, year)

	q := url.Values{}
	q.Set("query", query)
	q.Set("resultType", "core")
	q.Set("pageSize", fmt.Sprint(min(maxResults, 100)))
	q.Set("format", "json")
	q.Set("sort", "P_PDATE_D desc")

	var resp struct {
		HitCount   int `json:"hitCount"`
		ResultList struct {
			Result []epmcArticle `json:"result"`
		} `json:"resultList"`
	}
	if err := e.fetcher.GetJSON(ctx, e.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, eris.Wrap(err, "europepmc: search")
	}

	var records []model.RawRecord
	for _, art := range resp.ResultList.Result {
		if rec, ok := e.extract(art); ok {
			records = append(records, rec)
		}
	}

	zap.L().Info("europe pmc fetch complete",
		zap.Int("hits", resp.HitCount),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// extract prefers an author carrying an ORCID-style identifier, falling back
// to the lead author.
func (e *EuropePMC) extract(art epmcArticle) (model.RawRecord, bool) {
	authors := art.AuthorList.Author
	if len(authors) == 0 {
		return nil, false
	}

	author := authors[0]
	for _, a := range authors {
		if a.AuthorID != nil && a.AuthorID.Value != "" {
			author = a
			break
		}
	}

	name := strings.TrimSpace(author.FirstName + " " + author.LastName)
	if name == "" {
		name = strings.TrimSpace(author.FullName)
	}
	if name == "" {
		return nil, false
	}

	company, personLoc, companyHQ := parseAffiliation(author.affiliationText())

	return model.RawRecord{
		"name":              name,
		"title":             "Researcher / Author",
		"company":           company,
		"person_location":   personLoc,
		"company_hq":        companyHQ,
		"publication_topic": truncate(art.Title, 200),
		"publication_year":  art.PubYear,
		"raw_text":          art.Abstract,
	}, true
}
