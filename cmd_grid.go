package main

import (
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rtm0/patchgrid/internal/convert"
)

func newGridCmd(logger *slog.Logger, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid [input_netcdf]",
		Short: "Transform output with summed patches to 2D latitude/longitude arrays",
		Long: `Transform Cable or Casa output with summed patches to 2D arrays with
latitude/longitude.

Each land point is placed in the nearest cell of the grid given by the x and
y variables of the input, or of a grid synthesized for --region when the
input has none. The default output is input-2d.nc.`,
		Example: "  patchgrid grid -z -o cru_out_casa_2009_2011-no_patch-2d.nc cru_out_casa_2009_2011-no_patch.nc",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			return convert.Grid2D(cmd.Context(), convert.NewEnv(cfg, logger, commandLine()))
		},
	}
	cmd.Flags().StringVar(&opts.region, "region", "australia", "region of a synthesized grid: global or australia, or one defined in --config")
	cmd.Flags().IntVar(&opts.workers, "workers", runtime.NumCPU(), "number of concurrent nearest-cell queries")
	return cmd
}
