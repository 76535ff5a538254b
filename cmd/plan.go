package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fieldwise/aquaplan/config"
	"github.com/fieldwise/aquaplan/core/planner"
	"github.com/fieldwise/aquaplan/infra/logger"
	"github.com/fieldwise/aquaplan/infra/planfile"
	"github.com/fieldwise/aquaplan/pkg/export"
)

var (
	planOut    string
	planFormat string
)

var planCmd = &cobra.Command{
	Use:   "plan <planfile>",
	Short: "Compute a schedule from a planfile and export it",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "output file (default stdout)")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "json", "output format: json or csv")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	req, err := planfile.Load(args[0])
	if err != nil {
		return fmt.Errorf("load planfile: %w", err)
	}

	pl, err := planner.New(cfg.Planner, logger.New("plan-command"), nil, nil)
	if err != nil {
		return err
	}
	schedule, err := pl.Plan(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if planOut != "" {
		f, err := os.Create(planOut)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	switch strings.ToLower(planFormat) {
	case "csv":
		return export.WriteCSV(out, schedule)
	case "json":
		return export.WriteJSON(out, schedule)
	default:
		return fmt.Errorf("unknown format %q", planFormat)
	}
}
