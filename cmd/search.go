package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/session"
	"github.com/fakeyudi/focus/internal/storage"
)

var (
	searchFrom   string
	searchTo     string
	searchStatus string
	searchMin    float64
	searchMax    float64
	searchTags   []string
	searchText   string
	searchLimit  int
	searchOffset int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find attention log entries across stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := storage.SearchParams{
			Status: searchStatus,
			Tags:   searchTags,
			Text:   searchText,
			Limit:  searchLimit,
			Offset: searchOffset,
		}
		if searchFrom != "" || searchTo != "" {
			tr := &storage.TimeRange{}
			var err error
			if searchFrom != "" {
				if tr.Start, err = parseTime(searchFrom, false); err != nil {
					return err
				}
			}
			if searchTo != "" {
				if tr.End, err = parseTime(searchTo, true); err != nil {
					return err
				}
			}
			p.TimeRange = tr
		}
		if cmd.Flags().Changed("min") {
			p.MinConfidence = &searchMin
		}
		if cmd.Flags().Changed("max") {
			p.MaxConfidence = &searchMax
		}
		if searchLimit < 0 || searchOffset < 0 {
			return fmt.Errorf("--limit and --offset must not be negative")
		}

		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		res := st.Search(p)

		out := cmd.OutOrStdout()
		if searchJSON {
			return writeJSON(out, res)
		}
		for _, m := range res.Entries {
			fmt.Fprintf(out, "%-22s %s  %-16s %.2f\n",
				m.SessionID,
				session.FromMillis(m.Entry.Timestamp).Format("2006-01-02 15:04:05"),
				m.Entry.Status,
				m.Entry.Confidence,
			)
		}
		fmt.Fprintf(out, "%d of %d matching entries\n", len(res.Entries), res.Total)
		return nil
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFrom, "from", "", "only entries at or after this time")
	f.StringVar(&searchTo, "to", "", "only entries at or before this time (a bare date means its end)")
	f.StringVar(&searchStatus, "status", "", "exact status to match")
	f.Float64Var(&searchMin, "min", 0, "minimum confidence (inclusive)")
	f.Float64Var(&searchMax, "max", 0, "maximum confidence (inclusive)")
	f.StringArrayVarP(&searchTags, "tag", "t", nil, "session must carry one of these tags (repeatable)")
	f.StringVar(&searchText, "text", "", "case-insensitive text in status or metadata")
	f.IntVar(&searchLimit, "limit", 0, "maximum entries to print (0 = all)")
	f.IntVar(&searchOffset, "offset", 0, "skip this many matches first")
	f.BoolVar(&searchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(searchCmd)
}
