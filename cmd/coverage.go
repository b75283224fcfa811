package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	"github.com/frahmantamala/guard-deployment/internal/coverage"
	"github.com/spf13/cobra"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Print coverage gaps",
	Long:  `Print the sites short of guards for --date, or for every day of --from..--to, followed by the free rotating guards.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCoverageCommand()
	},
}

var (
	coverageDate string
	coverageFrom string
	coverageTo   string
	coverageJSON bool
)

func runCoverageCommand() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctx := context.Background()
	today := dateutil.Normalize(deps.Clock()())

	from, to, err := coverageRange(today)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	gaps, err := deps.Coverage.SitesRequiringCoverageRange(ctx, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coverage failed: %v\n", err)
		os.Exit(1)
	}
	free, err := deps.Coverage.FreeRotatingGuards(ctx, from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coverage failed: %v\n", err)
		os.Exit(1)
	}

	if coverageJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]interface{}{"gaps": gaps, "free_rotating_guards": free})
		return
	}

	printGaps(gaps)
	fmt.Printf("\nfree rotating guards on %s: %d\n", dateutil.Format(from), len(free))
	for _, g := range free {
		fmt.Printf("  %s  %s\n", g.ID, g.FullName)
	}
}

func coverageRange(today time.Time) (time.Time, time.Time, error) {
	if coverageFrom == "" && coverageTo == "" {
		day := today
		if coverageDate != "" {
			parsed, err := dateutil.Parse(coverageDate)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			day = parsed
		}
		return day, day, nil
	}

	from, err := dateutil.Parse(coverageFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to := from
	if coverageTo != "" {
		if to, err = dateutil.Parse(coverageTo); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func printGaps(gaps []coverage.Gap) {
	if len(gaps) == 0 {
		fmt.Println("no coverage gaps")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSITE\tCLIENT\tSHIFT\tREQUIRED\tCOVERING\tDEFICIT")
	for _, g := range gaps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			dateutil.Format(g.Date), g.SiteName, g.ClientName, g.Shift, g.Required, g.Covering, g.Deficit)
	}
	_ = w.Flush()
}

func init() {
	coverageCmd.Flags().StringVar(&coverageDate, "date", "", "single day to check (YYYY-MM-DD, defaults to today)")
	coverageCmd.Flags().StringVar(&coverageFrom, "from", "", "first day of a range (YYYY-MM-DD)")
	coverageCmd.Flags().StringVar(&coverageTo, "to", "", "last day of a range (YYYY-MM-DD)")
	coverageCmd.Flags().BoolVar(&coverageJSON, "json", false, "print JSON instead of a table")
}
