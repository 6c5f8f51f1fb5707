package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spigell/career-boost/internal/session"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Print the available products and their prices",
	RunE: func(_ *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tPRICE\tINCLUDES")
		for _, p := range session.Products() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Title(), p.Price(), includes(p))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(pricesCmd)
}

func includes(p session.Product) string {
	switch {
	case p.IncludesResume() && p.IncludesInterview():
		return "optimized resume, mock interview"
	case p.IncludesResume():
		return "optimized resume"
	case p.IncludesInterview():
		return "mock interview"
	default:
		return "-"
	}
}
