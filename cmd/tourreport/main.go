package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/wudi/tourreport/observability"
	"github.com/wudi/tourreport/report"
	"github.com/wudi/tourreport/tour"
)

type globalOptions struct {
	input      string
	output     string
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCommand(os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(logOut io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "tourreport",
		Short: "Generate PDF reports from tour planner exports",
		Long: `tourreport reads tours exported by the tour planner as JSON (a single
tour object or an array of tours) and writes a PDF report.`,
		Example: `  tourreport tour --input tours.json --id 3f1c...
  tourreport summary --input tours.json --output summary.pdf --config report.yaml
  tourreport export --input tours.json --id 3f1c... --output tour.json`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.input, "input", "i", "", "JSON file with one tour or an array of tours (- for stdin)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "output PDF path (defaults to <Kind>_<timestamp>.pdf)")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML report settings")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")
	_ = root.MarkPersistentFlagRequired("input")

	root.AddCommand(newTourCommand(opts, logOut), newSummaryCommand(opts, logOut), newExportCommand(opts))
	return root
}

func newTourCommand(opts *globalOptions, logOut io.Writer) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "tour",
		Short: "Write the detailed report of one tour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tours, err := readTours(cmd, opts.input)
			if err != nil {
				return err
			}
			t, err := selectTour(tours, id)
			if err != nil {
				return err
			}
			svc, err := newService(opts, logOut)
			if err != nil {
				return err
			}
			data, err := svc.GenerateTourReport(t)
			if err != nil {
				return err
			}
			return writeReport(cmd, opts.output, report.Detailed, data)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "tour ID to report on (required when the input holds several tours)")
	return cmd
}

func newSummaryCommand(opts *globalOptions, logOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Write the summary report of all tours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tours, err := readTours(cmd, opts.input)
			if err != nil {
				return err
			}
			svc, err := newService(opts, logOut)
			if err != nil {
				return err
			}
			data, err := svc.GenerateSummaryReport(tours)
			if err != nil {
				return err
			}
			return writeReport(cmd, opts.output, report.Summary, data)
		},
	}
}

func newExportCommand(opts *globalOptions) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one tour as normalized JSON",
		Long: `export reads the input like the report commands do and writes the selected
tour back as indented JSON in the tour planner export format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tours, err := readTours(cmd, opts.input)
			if err != nil {
				return err
			}
			t, err := selectTour(tours, id)
			if err != nil {
				return err
			}
			if t == nil {
				return errors.New("input holds no tours")
			}
			if opts.output == "" || opts.output == "-" {
				return tour.Encode(cmd.OutOrStdout(), t)
			}
			f, err := os.Create(opts.output)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			if err := tour.Encode(f, t); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "tour ID to export (required when the input holds several tours)")
	return cmd
}

func newService(opts *globalOptions, logOut io.Writer) (*report.Service, error) {
	cfg := report.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = report.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}
	level := lo.Ternary(opts.verbose, slog.LevelDebug, slog.LevelInfo)
	logger := observability.NewSlogLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))
	return report.New(append(cfg.Options(), report.WithLogger(logger))...), nil
}

func readTours(cmd *cobra.Command, path string) ([]*tour.Tour, error) {
	if path == "-" {
		return tour.Decode(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return tour.Decode(f)
}

func selectTour(tours []*tour.Tour, id string) (*tour.Tour, error) {
	if id == "" {
		switch len(tours) {
		case 0:
			return nil, nil
		case 1:
			return tours[0], nil
		}
		return nil, fmt.Errorf("input holds %d tours, pick one with --id", len(tours))
	}
	want, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid --id: %w", err)
	}
	t, ok := lo.Find(tours, func(t *tour.Tour) bool { return t.ID == want })
	if !ok {
		return nil, fmt.Errorf("tour %s not found", want)
	}
	return t, nil
}

func writeReport(cmd *cobra.Command, path string, kind report.Kind, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if path == "" {
		path = report.FileName(kind, time.Now())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
