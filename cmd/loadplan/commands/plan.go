package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/piwi3910/LoadPlan/internal/engine"
	"github.com/piwi3910/LoadPlan/internal/export"
	"github.com/piwi3910/LoadPlan/internal/importer"
	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/piwi3910/LoadPlan/internal/project"
	"github.com/spf13/cobra"
)

// outputs are the optional files written for a plan.
type outputs struct {
	json   string
	pdf    string
	labels string
	dxf    string
}

func (o *outputs) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.json, "json", "", "write the plan file (JSON)")
	cmd.Flags().StringVar(&o.pdf, "pdf", "", "write the loading report (PDF)")
	cmd.Flags().StringVar(&o.labels, "labels", "", "write QR pile labels (PDF)")
	cmd.Flags().StringVar(&o.dxf, "dxf", "", "write the layout drawing (DXF)")
}

func newPlanCommand(a *app) *cobra.Command {
	var (
		out     outputs
		groupBy string
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Plan a delivery order export",
		Long: `Import a delivery order export (CSV or XLSX), build the piles and place
them on the truck. A summary is printed; the plan can also be written as
a JSON plan file, a printable loading report, pile labels and a DXF drawing.`,
		Example: `  # Print the placement summary
  loadplan plan carga.csv

  # Group by delivery sequence and write every output
  loadplan plan carga.xlsx --group-by sequence --json carga.plan.json \
      --pdf carga.pdf --labels etiquetas.pdf --dxf carga.dxf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]

			lines, err := a.importLines(file)
			if err != nil {
				return err
			}

			settings := a.settings
			if groupBy != "" {
				settings.GroupBy = model.GroupKey(groupBy)
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			result := engine.New(settings,
				engine.WithPreferences(a.prefs),
				engine.WithLogger(a.log),
			).Plan(lines)

			if !quiet {
				printSummary(cmd.OutOrStdout(), result)
			}
			if err := a.writeOutputs(out, project.NewPlanFile(filepath.Base(file), settings, result)); err != nil {
				return err
			}
			a.saveRecent(file)
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVarP(&groupBy, "group-by", "g", "", "group key: client or sequence")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the summary")

	return cmd
}

func newRenderCommand(a *app) *cobra.Command {
	var out outputs

	cmd := &cobra.Command{
		Use:   "render <plan.json>",
		Short: "Write reports for a saved plan file",
		Example: `  loadplan render carga.plan.json --pdf carga.pdf --labels etiquetas.pdf`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := project.LoadPlan(args[0])
			if err != nil {
				return err
			}
			if out.json == "" && out.pdf == "" && out.labels == "" && out.dxf == "" {
				printSummary(cmd.OutOrStdout(), plan.Result)
				return nil
			}
			return a.writeOutputs(out, plan)
		},
	}

	out.register(cmd)
	return cmd
}

// importLines reads an order file. Rejected rows are logged; a file without
// a single valid row is an error.
func (a *app) importLines(file string) ([]model.ProductLine, error) {
	imported := importer.ImportFile(file)
	for _, e := range imported.Errors {
		a.log.Warn().Str("file", file).Msg(e)
	}
	for _, w := range imported.Warnings {
		a.log.Info().Str("file", file).Msg(w)
	}
	if len(imported.Lines) == 0 {
		return nil, fmt.Errorf("%s: no valid product lines", file)
	}
	a.log.Info().
		Str("file", file).
		Int("lines", len(imported.Lines)).
		Int("rejected", len(imported.Errors)).
		Msg("order imported")
	return imported.Lines, nil
}

// writeOutputs writes each requested file. Every output is attempted; the
// errors are joined.
func (a *app) writeOutputs(out outputs, plan project.PlanFile) error {
	var errs []error
	write := func(kind, path string, fn func() error) {
		if path == "" {
			return
		}
		if err := fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			return
		}
		a.log.Info().Str("file", path).Msg(kind + " written")
	}

	write("plan file", out.json, func() error { return project.SavePlan(out.json, plan) })
	write("loading report", out.pdf, func() error { return export.ExportPDF(out.pdf, plan.Result, plan.Settings) })
	write("labels", out.labels, func() error { return export.ExportLabels(out.labels, plan.Result) })
	write("layout drawing", out.dxf, func() error { return export.ExportDXF(out.dxf, plan.Result) })

	return errors.Join(errs...)
}

// printSummary writes the per-compartment occupation and the unallocated
// piles as a table.
func printSummary(w io.Writer, result model.PlanResult) {
	s := result.Summary
	fmt.Fprintf(w, "Clients: %d  Products: %d (%d special)  Weight: %s kg\n",
		s.Clients, s.TotalProducts, s.SpecialProducts, humanize.FormatFloat("#,###.#", result.TotalWeight()))
	fmt.Fprintf(w, "Allocated: %d products in %d piles  Unallocated: %d products in %d piles\n\n",
		s.AllocatedProducts, s.AllocatedPiles, s.UnallocatedProducts, s.UnallocatedPiles)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPARTMENT\tSIDE\tOCCUPIED\tCAPACITY\tPILES\tWEIGHT")
	for _, c := range result.Compartments {
		for _, side := range c.Sides {
			fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.0f\t%d\t%s kg\n",
				c.ID, side.Name, side.Occupied, side.Capacity, len(side.Piles),
				humanize.FormatFloat("#,###.#", side.Weight))
		}
	}
	tw.Flush()

	fmt.Fprintf(w, "\nUtilization: %.1f%%\n", result.TotalUtilization())

	if spans := model.DetectAllFreeSpans(result); len(spans) > 0 {
		fmt.Fprintf(w, "Free floor: %.0f mm\n", model.TotalFreeWidth(spans))
		for _, sp := range spans {
			fmt.Fprintf(w, "  %s %s: %.0f mm from %.0f\n", sp.Compartment, sp.Side, sp.Width, sp.Offset)
		}
	}

	if len(result.Unallocated) == 0 {
		return
	}
	fmt.Fprintln(w, "\nUnallocated piles:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLIENT\tUNITS\tWIDTH\tHEIGHT\tWEIGHT")
	for _, p := range result.Unallocated {
		fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.0f\t%s kg\n",
			p.ClientID, p.Count(), p.Width, p.Height, humanize.FormatFloat("#,###.#", p.Weight))
	}
	tw.Flush()
}
