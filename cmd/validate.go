package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldwise/aquaplan/infra/planfile"
)

var validateCmd = &cobra.Command{
	Use:   "validate <planfile>",
	Short: "Check a planfile without planning",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	req, err := planfile.Load(args[0])
	if err != nil {
		return err
	}
	var bad int
	for _, p := range req.Parcels {
		if err := p.Validate(); err != nil {
			bad++
			fmt.Fprintf(cmd.ErrOrStderr(), "invalid: %v\n", err)
			continue
		}
		if f, ok := req.ForecastFor(p); !ok || !f.Covers(req.Horizon) {
			bad++
			fmt.Fprintf(cmd.ErrOrStderr(), "invalid: parcel %s: forecast %q does not cover %d days\n",
				p.ID, p.ForecastRegion(), req.Horizon)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d parcels invalid", bad, len(req.Parcels))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d parcels, %d day horizon, %.1f mm/day capacity: ok\n",
		len(req.Parcels), req.Horizon, req.DailyCapacityMM)
	return nil
}
