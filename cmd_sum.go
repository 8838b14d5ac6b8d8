package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rtm0/patchgrid/internal/convert"
)

func newSumCmd(logger *slog.Logger, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sum [input_netcdf]",
		Short: "Copy Casa/Cable output summing the patches on the same grid point",
		Long: `Copy Casa/Cable output summing the patches on the same grid point.

Latitude and longitude are taken from the first patch, area_gridcell is
summed, and every other land variable is summed weighted by patchfrac.
The default output is input-no_patch.nc.`,
		Example: "  patchgrid sum -o cru_out_casa_2009_2011-no_patch.nc cru_out_casa_2009_2011.nc",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			return convert.SumPatches(cmd.Context(), convert.NewEnv(cfg, logger, commandLine()))
		},
	}
}
