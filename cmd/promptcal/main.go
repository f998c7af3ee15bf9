package main

import (
	"context"
	"fmt"
	"os"

	"github.com/effective-security/promptcal/agent"
	"github.com/effective-security/promptcal/calibrate"
	"github.com/effective-security/promptcal/llmutils"
	"github.com/effective-security/promptcal/store"
	"github.com/effective-security/promptcal/tools"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/promptcal", "cli")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.KV(xlog.ERROR, "err", err.Error())
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgFile string
	var debug bool

	root := &cobra.Command{
		Use:           "promptcal",
		Short:         "Calibrates prompt strategies for tool-calling agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
			if debug {
				xlog.SetGlobalLogLevel(xlog.DEBUG)
			} else {
				xlog.SetGlobalLogLevel(xlog.INFO)
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "cfg", "promptcal.yaml", "configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newCalibrateCommand(&cfgFile))
	root.AddCommand(newMappingCommand(&cfgFile))
	return root
}

func newCalibrateCommand(cfgFile *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "calibrate <server|all>",
		Short: "Benchmark every strategy against every tool of a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			cfg, err := calibrate.LoadConfig(*cfgFile)
			if err != nil {
				return err
			}

			catalog, err := tools.LoadCatalog(cfg.Catalog)
			if err != nil {
				return err
			}

			var descriptors []tools.Descriptor
			for _, server := range catalog.Servers() {
				list, err := catalog.Tools(cc.Context(), server)
				if err != nil {
					continue
				}
				descriptors = append(descriptors, list...)
			}

			runner, err := agent.NewRunner(&cfg.Agent, descriptors)
			if err != nil {
				return err
			}

			eng := calibrate.NewEngine(catalog, runner,
				store.NewFileStore(cfg.Mapping), cfg.Options(force)...)

			ctx := context.Background()
			if args[0] == "all" {
				reports, err := eng.RunAll(ctx)
				for _, report := range reports {
					printSummary(cc, report)
				}
				return err
			}
			report, err := eng.Run(ctx, args[0])
			if err != nil {
				return err
			}
			printSummary(cc, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "recalibrate tools with unchanged schemas")
	return cmd
}

func newMappingCommand(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Inspect the persisted strategy mapping",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the mapping as JSON",
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, err := calibrate.LoadConfig(*cfgFile)
			if err != nil {
				return err
			}
			m, err := store.NewFileStore(cfg.Mapping).LoadMapping(cc.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cc.OutOrStdout(), llmutils.ToJSONIndent(m))
			return nil
		},
	})
	return cmd
}

func printSummary(cc *cobra.Command, report *calibrate.ServerReport) {
	fmt.Fprintf(cc.OutOrStdout(), "%s: %d calibrated, %d skipped, %d unchanged\n",
		report.Server, len(report.Results), len(report.Skipped), len(report.Unchanged))
}
