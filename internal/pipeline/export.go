package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/score"
)

// exportColumns is the ordered output schema shared by the CSV and XLSX
// exporters. Downstream sheets key on these headers; do not reorder.
var exportColumns = []string{
	"name",
	"title",
	"company",
	"person_location",
	"company_hq",
	"funding_stage",
	"publication_topic",
	"publication_year",
	"uses_invitro",
	"email",
	"work_mode",
	"company_in_hub",
	"probability_score",
	"rank",
}

// Exporter writes ranked leads to the configured output formats.
type Exporter struct {
	engine *score.Engine
	dir    string
}

func NewExporter(engine *score.Engine, dir string) *Exporter {
	return &Exporter{engine: engine, dir: dir}
}

// Export writes one file per requested format and returns the paths written.
// Ranked input order is preserved byte for byte.
func (e *Exporter) Export(leads []model.Lead, baseName string, formats []string) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "export: create output dir")
	}

	var paths []string
	for _, format := range formats {
		path := filepath.Join(e.dir, baseName+"."+format)
		var err error
		switch format {
		case "csv":
			err = e.writeCSV(leads, path)
		case "xlsx":
			err = e.writeXLSX(leads, path)
		case "json":
			err = e.writeJSON(leads, path)
		default:
			err = eris.Errorf("export: unknown format %q", format)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (e *Exporter) writeCSV(leads []model.Lead, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(exportColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, lead := range leads {
		if err := w.Write(e.row(lead)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

func (e *Exporter) writeJSON(leads []model.Lead, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create json")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(leads); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}

// row maps a lead to the export schema.
func (e *Exporter) row(lead model.Lead) []string {
	year := ""
	if lead.PublicationYear > 0 {
		year = strconv.Itoa(lead.PublicationYear)
	}
	return []string{
		lead.Name,
		lead.Title,
		lead.Company,
		lead.PersonLocation,
		lead.CompanyHQ,
		lead.FundingStage,
		lead.PublicationTopic,
		year,
		boolCell(lead.UsesInVitro),
		lead.Email,
		string(lead.WorkMode),
		boolCell(e.engine.InHub(lead)),
		fmt.Sprintf("%.1f", lead.ProbabilityScore),
		strconv.Itoa(lead.Rank),
	}
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
