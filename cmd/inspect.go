package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bom-steel-filler/internal/bomtable"
	"github.com/ginjaninja78/bom-steel-filler/internal/profile"
	"github.com/ginjaninja78/bom-steel-filler/internal/types"
	"github.com/ginjaninja78/bom-steel-filler/internal/validation"
)

var inspectTable string

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the items parsed from the materials table",
	Long: `The inspect command reads the materials table exactly as 'fill' does and
prints every item with its section, family and extracted dimensions, followed
by the table findings. The workbook is not opened.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cmd.Flags().Changed("table") {
			cfg.TablePath = inspectTable
		}

		table, err := bomtable.Read(cfg.TablePath)
		if err != nil {
			return err
		}

		items, findings, err := bomtable.ExtractItems(table)
		if findings != nil && len(findings.Errors) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), validation.FormatErrors(findings.Errors))
		}
		if err != nil {
			return err
		}

		return printItems(cmd.OutOrStdout(), items)
	},
}

// printItems writes one line per item.
func printItems(out io.Writer, items []types.MaterialItem) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDESCRIPTION\tSECTION\tFAMILY\tA\tB\tC\tESP\tGRADE\tLENGTH (m)\tWEIGHT (kg)")
	for i, item := range items {
		class, dims := profile.Analyze(item.Description)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			item.Description,
			class.Section,
			class.Family,
			formatMM(dims.A),
			formatMM(dims.B),
			formatMM(dims.C),
			formatMM(dims.Thickness),
			item.Grade,
			item.LengthMeters.String(),
			item.WeightKg.String(),
		)
	}
	return w.Flush()
}

func formatMM(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectTable, "table", "", "Materials table (.docx, .csv or .xlsx)")
}
