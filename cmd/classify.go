package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bom-steel-filler/internal/profile"
)

// classifyCmd represents the 'classify' command.
var classifyCmd = &cobra.Command{
	Use:   "classify DESCRIPTION...",
	Short: "Classify profile descriptions",
	Long: `The classify command prints, for each description, the sheet section it
would be written to, its profile family, the rule that matched and the
extracted dimensions in millimeters.

Example:
  bomfill classify "U 100x50x3mm" 'L DOBRADO 1.1/2"x1/8"' "RED 12.7"`,

	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return printClassifications(cmd.OutOrStdout(), args)
	},
}

func printClassifications(out io.Writer, descriptions []string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DESCRIPTION\tSECTION\tFAMILY\tRULE\tTOKENS\tA\tB\tC\tESP")
	for _, desc := range descriptions {
		class, dims := profile.Analyze(desc)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			desc,
			class.Section,
			class.Family,
			profile.MatchedRule(desc),
			strings.Join(profile.Tokens(desc), " "),
			formatMM(dims.A),
			formatMM(dims.B),
			formatMM(dims.C),
			formatMM(dims.Thickness),
		)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
