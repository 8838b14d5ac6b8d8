package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtm0/patchgrid/internal/config"
)

// options are the flags shared by all commands and the level they adjust.
type options struct {
	level      *slog.LevelVar
	output     string
	configPath string
	verbose    bool
	compress   bool
	region     string
	workers    int
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	opts := &options{level: level}
	root := &cobra.Command{
		Use:           "patchgrid",
		Short:         "Convert CABLE/CASA patch output",
		Long:          "Sum vegetation patches per land point, or place land points on a latitude/longitude grid.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.output, "outfile", "o", "", "output netcdf file name (default: input with a command specific suffix)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "feedback during copy")
	pf.BoolVarP(&opts.compress, "zip", "z", false, "request NetCDF-4 output (default: same format as input file)")
	pf.StringVar(&opts.configPath, "config", "", "YAML file overriding variable names and regions")

	root.AddCommand(newSumCmd(logger, opts), newGridCmd(logger, opts))
	return root
}

// buildConfig merges the config file, the flags set on cmd and the
// positional input path, and raises the log level when the merged
// settings ask for verbose output.
func buildConfig(cmd *cobra.Command, opts *options, args []string) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("outfile") {
		cfg.Output = opts.output
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("zip") {
		cfg.Compress = opts.compress
	}
	if flags.Changed("region") {
		cfg.Region = opts.region
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if cfg.Verbose {
		opts.level.Set(slog.LevelInfo)
	}
	return cfg, cfg.Validate()
}

// commandLine returns the invocation recorded in the output history.
func commandLine() []string {
	return os.Args
}
