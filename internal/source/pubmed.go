package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/model"
)

const pubmedEFetchBatch = 50

var emailInText = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)

// PubMed queries NCBI E-utilities: esearch for PMIDs, then efetch in batches
// for article XML. NCBI asks for a contact address on every request.
type PubMed struct {
	fetcher      *fetcher.HTTPFetcher
	contactEmail string
	baseURL      string
	now          func() time.Time
}

func NewPubMed(f *fetcher.HTTPFetcher, contactEmail string) *PubMed {
	return &PubMed{
		fetcher:      f,
		contactEmail: contactEmail,
		baseURL:      "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
		now:          time.Now,
	}
}

func (p *PubMed) ID() model.SourceID { return model.SourcePubMed }

func (p *PubMed) Fetch(ctx context.Context, keywords []string, maxResults int) ([]model.RawRecord, error) {
	ids, err := p.search(ctx, keywords, maxResults)
	if err != nil {
		return nil, eris.Wrap(err, "pubmed: search")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var records []model.RawRecord
	for start := 0; start < len(ids); start += pubmedEFetchBatch {
		end := min(start+pubmedEFetchBatch, len(ids))
		batch, err := p.fetchBatch(ctx, ids[start:end])
		if err != nil {
			// Keep what earlier batches produced; the caller decides whether
			// partial output counts as degraded.
			return records, eris.Wrap(err, "pubmed: fetch batch")
		}
		records = append(records, batch...)
	}

	zap.L().Info("pubmed fetch complete",
		zap.Int("ids", len(ids)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (p *PubMed) search(ctx context.Context, keywords []string, maxResults int) ([]string, error) {
	year := p.now().Year()
	term := strings.Join(quotedFieldTerms(keywords, 5), " OR ")
	term += fmt.Sprintf(" AND %d:%d[pdat]", year-2, year)

	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("term", term)
	q.Set("retmax", fmt.Sprint(maxResults))
	q.Set("retmode", "json")
	q.Set("email", p.contactEmail)
	q.Set("sort", "date")

	var resp struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := p.fetcher.GetJSON(ctx, p.baseURL+"/esearch.fcgi?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.ESearchResult.IDList, nil
}

func quotedFieldTerms(keywords []string, max int) []string {
	if len(keywords) > max {
		keywords = keywords[:max]
	}
	terms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		terms = append(terms, `"`+kw+`"[Title/Abstract]`)
	}
	return terms
}

type pubmedArticle struct {
	Title       string         `xml:"MedlineCitation>Article>ArticleTitle"`
	Year        string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	MedlineDate string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>MedlineDate"`
	Authors     []pubmedAuthor `xml:"MedlineCitation>Article>AuthorList>Author"`
}

type pubmedAuthor struct {
	LastName       string   `xml:"LastName"`
	ForeName       string   `xml:"ForeName"`
	CollectiveName string   `xml:"CollectiveName"`
	Affiliations   []string `xml:"AffiliationInfo>Affiliation"`
}

func (p *PubMed) fetchBatch(ctx context.Context, ids []string) ([]model.RawRecord, error) {
	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("id", strings.Join(ids, ","))
	q.Set("retmode", "xml")
	q.Set("email", p.contactEmail)

	body, err := p.fetcher.Get(ctx, p.baseURL+"/efetch.fcgi?"+q.Encode())
	if err != nil {
		return nil, err
	}

	articles, err := fetcher.DecodeXMLElements[pubmedArticle](ctx, bytes.NewReader(body), "PubmedArticle")
	if err != nil {
		return nil, err
	}

	var records []model.RawRecord
	for _, art := range articles {
		if rec, ok := p.extract(art); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// extract picks the first author carrying an affiliation, falling back to the
// lead author. Affiliation text often embeds the corresponding address.
func (p *PubMed) extract(art pubmedArticle) (model.RawRecord, bool) {
	if len(art.Authors) == 0 {
		return nil, false
	}

	author := art.Authors[0]
	affiliation := ""
	for _, a := range art.Authors {
		if len(a.Affiliations) > 0 && a.Affiliations[0] != "" {
			author = a
			affiliation = a.Affiliations[0]
			break
		}
	}
	if affiliation == "" && len(author.Affiliations) > 0 {
		affiliation = author.Affiliations[0]
	}

	name := strings.TrimSpace(author.ForeName + " " + author.LastName)
	if name == "" {
		name = strings.TrimSpace(author.CollectiveName)
	}
	if name == "" {
		return nil, false
	}

	email := emailInText.FindString(affiliation)
	company, personLoc, companyHQ := parseAffiliation(affiliation)

	year := art.Year
	if year == "" && len(art.MedlineDate) >= 4 {
		year = art.MedlineDate[:4]
	}

	return model.RawRecord{
		"name":              name,
		"title":             "Researcher / Author",
		"company":           company,
		"person_location":   personLoc,
		"company_hq":        companyHQ,
		"publication_topic": truncate(art.Title, 200),
		"publication_year":  year,
		"email":             email,
	}, true
}
