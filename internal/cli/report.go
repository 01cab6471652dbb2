package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fjglira/specwalk/internal/config"
	"github.com/fjglira/specwalk/internal/records"
	"github.com/fjglira/specwalk/internal/report"
	"github.com/fjglira/specwalk/internal/reporter"
)

var (
	reportFormat string
	reportOutput string
	reportLabel  string
	failOnError  bool
)

var reportCmd = &cobra.Command{
	Use:   "report [records files...]",
	Short: "Render a hierarchical report from records files",
	Long: `Reads records files (given as arguments, or found below input.directories),
folds them into one report tree and renders it as text, yaml or html.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if reportFormat != "" {
			cfg.Report.Format = reportFormat
		}
		if reportOutput != "" {
			cfg.Report.Output = reportOutput
		}

		root, err := buildReport(cfg, args)
		if err != nil {
			return err
		}

		stats := root.Stats()
		log.WithField("cases", stats.Cases).WithField("failed", stats.Failed).Info("Report built")

		if err := render(cmd.OutOrStdout(), cfg, root); err != nil {
			return err
		}
		if failOnError && stats.Failed > 0 {
			rec := report.NewRecorder()
			report.Report(root, rec)
			failed := rec.Failures()
			log.WithField("failures", failed).Warn("Report contains failures")
			return fmt.Errorf("%d failure(s) reported: %s", len(failed), strings.Join(failed, ", "))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "", "output format: text, yaml or html (overrides report.format)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file, - for stdout (overrides report.output)")
	reportCmd.Flags().StringVar(&reportLabel, "label", "specwalk", "label of the report root")
	reportCmd.Flags().BoolVar(&failOnError, "fail", false, "exit non-zero when the report contains failures")
	rootCmd.AddCommand(reportCmd)
}

// buildReport reads every records file and folds it into one tree: one suite
// per file, one entry per explored entry point.
func buildReport(cfg *config.Config, files []string) (*report.Node, error) {
	if len(files) == 0 {
		recursive := true
		if cfg.Input.Recursive != nil {
			recursive = *cfg.Input.Recursive
		}
		finder := &records.Finder{
			Include:   cfg.Input.Include,
			Exclude:   cfg.Input.Exclude,
			Recursive: recursive,
		}
		log.WithField("directories", cfg.Input.Directories).Debug("Scanning for records files")
		found, err := finder.Find(cfg.Input.Directories...)
		if err != nil {
			return nil, err
		}
		files = found
	}
	if len(files) == 0 {
		log.Warn("No records files found")
	}

	tree := report.NewTree(reportLabel)
	for _, path := range files {
		f, err := records.Read(path)
		if err != nil {
			return nil, err
		}
		log.WithField("file", path).WithField("entries", len(f.Entries)).Debug("Loaded records")
		suite := tree.Root().Suite(f.Suite)
		for _, e := range f.Entries {
			suite.AddEntry(e.Name, e.PathRecords())
		}
	}
	return tree.Root(), nil
}

func render(stdout io.Writer, cfg *config.Config, root *report.Node) error {
	registry := reporter.NewRegistry()
	registry.Register(reporter.NewTextRenderer(cfg.Report.Locations))
	registry.Register(reporter.NewYAMLRenderer())
	registry.Register(reporter.NewHTMLRenderer())

	rd, err := registry.RendererFor(cfg.Report.Format)
	if err != nil {
		return err
	}

	w := stdout
	if cfg.Report.Output != "" && cfg.Report.Output != "-" {
		f, err := os.Create(cfg.Report.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
		log.WithField("path", cfg.Report.Output).Info("Writing report")
	}
	return rd.Render(w, root)
}
