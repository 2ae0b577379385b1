package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/SAP-F-2025/scoring-service/internal/config"
	"github.com/SAP-F-2025/scoring-service/internal/repositories/memory"
	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
	"github.com/spf13/cobra"
)

type batchFlags struct {
	input       string
	preset      string
	points      float64
	presetsFile string
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "JSON request file (\"-\" reads stdin)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "area preset name, e.g. ENEM-DIA1")
	cmd.Flags().Float64Var(&f.points, "points", 0, "points per correct answer (default from request or 0.222)")
	cmd.Flags().StringVar(&f.presetsFile, "presets-file", "", "YAML file with extra area presets")
	_ = cmd.MarkFlagRequired("input")
}

func (f *batchFlags) pointsOverride(cmd *cobra.Command) *float64 {
	if !cmd.Flags().Changed("points") {
		return nil
	}
	v := f.points
	return &v
}

// offlineService scores without session persistence, archive or events.
func offlineService(presetsFile string) (services.ScoringService, error) {
	presets, err := config.LoadPresets(presetsFile)
	if err != nil {
		return nil, err
	}
	return services.NewScoringService(services.Dependencies{
		Sessions:  memory.NewSessionMemory(),
		Presets:   presets,
		Validator: validator.New(presets.Names()...),
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}, services.ScoringServiceConfig{}), nil
}

func readRequest(path string, dest interface{}) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dest); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func newScoreCmd() *cobra.Command {
	var flags batchFlags
	var withStats bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a JSON batch of answer sheets and print the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req services.ScoreRequest
			if err := readRequest(flags.input, &req); err != nil {
				return err
			}
			if flags.preset != "" {
				req.Preset = flags.preset
			}
			if p := flags.pointsOverride(cmd); p != nil {
				req.PointsPerCorrect = p
			}
			if withStats {
				req.IncludeStatistics = true
			}

			svc, err := offlineService(flags.presetsFile)
			if err != nil {
				return err
			}
			resp, err := svc.Score(commandContext(cmd), &req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&withStats, "stats", false, "include exam statistics")
	return cmd
}

func newExportCmd() *cobra.Command {
	var flags batchFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Score a JSON batch and write the Excel report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req services.ExportRequest
			if err := readRequest(flags.input, &req); err != nil {
				return err
			}
			if flags.preset != "" {
				req.Preset = flags.preset
			}
			if p := flags.pointsOverride(cmd); p != nil {
				req.PointsPerCorrect = p
			}

			svc, err := offlineService(flags.presetsFile)
			if err != nil {
				return err
			}
			data, err := svc.ExportExcel(commandContext(cmd), &req)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d students)\n", out, len(req.Students))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "resultados.xlsx", "output .xlsx path")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
