package source

import (
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// Scholar scrapes the Google Scholar results page. There is no API; the page
// is fetched at a low rate and parsed with regular expressions. Google blocks
// automated traffic aggressively, so a block is reported as an error and the
// pipeline treats this source as best-effort.
type Scholar struct {
	fetcher *fetcher.HTTPFetcher
	baseURL string
}

func NewScholar(f *fetcher.HTTPFetcher) *Scholar {
	return &Scholar{
		fetcher: f,
		baseURL: "https://scholar.google.com/scholar",
	}
}

func (s *Scholar) ID() model.SourceID { return model.SourceScholar }

var (
	// Each result renders a gs_rt title heading followed by a gs_a byline.
	scholarResult = regexp.MustCompile(
		`(?s)<h3 class="gs_rt"[^>]*>(.*?)</h3>.*?<div class="gs_a"[^>]*>(.*?)</div>`)
	htmlTag   = regexp.MustCompile(`<[^>]+>`)
	yearInRun = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

func (s *Scholar) Fetch(ctx context.Context, keywords []string, maxResults int) ([]model.RawRecord, error) {
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}

	q := url.Values{}
	q.Set("q", strings.Join(keywords, " "))
	q.Set("hl", "en")

	body, err := s.fetcher.Get(ctx, s.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "scholar: fetch")
	}
	if blocked(body) {
		return nil, eris.New("scholar: blocked by anti-bot protection")
	}

	var records []model.RawRecord
	for _, m := range scholarResult.FindAllStringSubmatch(string(body), -1) {
		if len(records) >= maxResults {
			break
		}
		if rec, ok := s.extract(m[1], m[2]); ok {
			records = append(records, rec)
		}
	}

	zap.L().Info("scholar fetch complete", zap.Int("records", len(records)))
	return records, nil
}

// blocked mirrors the markers Google serves on its interstitial pages.
func blocked(body []byte) bool {
	lower := strings.ToLower(string(body))
	for _, marker := range []string{"captcha", "unusual traffic", "please show you're not a robot"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// extract parses one result: the byline has the shape
// "A Author, B Author - Venue, 2024 - publisher.com".
func (s *Scholar) extract(rawTitle, rawByline string) (model.RawRecord, bool) {
	title := stripTags(rawTitle)
	byline := stripTags(rawByline)

	segments := strings.Split(byline, " - ")
	if len(segments) == 0 {
		return nil, false
	}

	authors := strings.Split(segments[0], ",")
	name := strings.TrimSpace(authors[0])
	if name == "" || strings.HasPrefix(name, "…") {
		return nil, false
	}

	venue, year := "", ""
	if len(segments) > 1 {
		venueRun := strings.TrimSpace(segments[1])
		year = yearInRun.FindString(venueRun)
		venue = strings.TrimSpace(strings.TrimSuffix(venueRun, year))
		venue = strings.TrimSuffix(strings.TrimSpace(venue), ",")
	}

	return model.RawRecord{
		"name":              name,
		"title":             "Researcher / Author",
		"company":           venue,
		"publication_topic": truncate(title, 200),
		"publication_year":  year,
	}, true
}

func stripTags(s string) string {
	s = htmlTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
