package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lead-generation runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		leads, _ := cmd.Flags().GetBool("leads")
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if !leads {
			return enc.Encode(run)
		}

		stored, err := st.GetLeads(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show leads")
		}
		return enc.Encode(struct {
			Run   *model.Run   `json:"run"`
			Leads []model.Lead `json:"leads"`
		}{run, stored})
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (running, complete, empty, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")
	runsShowCmd.Flags().Bool("leads", false, "include the stored ranked leads")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKEYWORDS\tSTATUS\tLEADS\tAVG\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t------\t-----\t---\t-------")

	for _, r := range runs {
		leads, avg := "-", "-"
		if r.Summary != nil {
			leads = fmt.Sprintf("%d", r.Summary.Leads)
			avg = fmt.Sprintf("%.1f", r.Summary.AvgScore)
		}

		keywords := ""
		if len(r.Keywords) > 0 {
			keywords = r.Keywords[0]
			if len(r.Keywords) > 1 {
				keywords += fmt.Sprintf(" (+%d)", len(r.Keywords)-1)
			}
		}
		if len(keywords) > 30 {
			keywords = keywords[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			keywords,
			r.Status,
			leads,
			avg,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
