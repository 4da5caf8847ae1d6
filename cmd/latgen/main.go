// latgen generates atomic-scale substrate structures for molecular-dynamics
// simulations: it replicates crystal lattices over a requested extent, stacks
// and perturbs layers, merges the substrates and writes a .gro file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"latgen/internal/config"
)

var (
	logger  *zap.Logger
	envCfg  config.Env
	verbose bool
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "latgen",
	Short: "Generate lattice substrates for molecular-dynamics input",
	Long: `latgen builds crystalline substrate structures (graphene sheets and
related layered lattices) from a declarative construction request and writes
them as GROMOS87 structure files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		envCfg, err = config.LoadEnv()
		if err != nil {
			return err
		}
		if dbPath == "" {
			dbPath = envCfg.CellDB
		}

		zcfg := zap.NewProductionConfig()
		if verbose || envCfg.LogLevel == "debug" {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "celldb", "", "path to the unit-cell catalog (default $LATGEN_CELLDB)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cellsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
