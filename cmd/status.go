package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"spaceledger/internal/audit"
	bookingpg "spaceledger/internal/booking/infrastructure/postgres"
)

var statusRuns int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger totals and recent import runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		counts, err := bookingpg.NewBookingRepository(db).CountBySource(cmd.Context())
		if err != nil {
			return fmt.Errorf("count bookings: %w", err)
		}
		if len(counts) == 0 {
			fmt.Println("no bookings stored")
		} else {
			fmt.Println("bookings by source:")
			total := 0
			for _, source := range sortedKeys(counts) {
				fmt.Printf("  %-14s %d\n", source, counts[source])
				total += counts[source]
			}
			fmt.Printf("  %-14s %d\n", "total", total)
		}

		entries, err := audit.NewRepository(db).ListRecent(cmd.Context(), statusRuns)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		fmt.Printf("\nlast %d import runs:\n", len(entries))
		for _, e := range entries {
			fmt.Printf("  %s  %-8s %-12s %4d rows  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Status, e.Source, e.RecordCount, e.FileName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&statusRuns, "runs", 10, "number of recent runs to show")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
