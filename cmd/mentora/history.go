package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history <service>",
		Short: "List locally saved predictions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := lookup(args[0], service.VariantCLI)
			if err != nil {
				return err
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}

			hist, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer hist.Close()

			svc := service.NewPredictionService(def, nil, hist, nil, zap.L())
			items, total, err := svc.History(cmd.Context(), domain.HistoryFilter{Limit: limit})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"predictions": items, "total_count": total})
			}
			printHistory(cmd.OutOrStdout(), items, total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of predictions to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printHistory(w io.Writer, items []domain.StoredPrediction, total int64) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No saved predictions.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSCORE\tCATEGORY\tID")
	for _, p := range items {
		score := "-"
		if p.Score != nil {
			score = fmt.Sprintf("%g", *p.Score)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.CreatedAt.Local().Format(time.DateTime), score, p.Category, p.ID)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nShowing %d of %d\n", len(items), total)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
