package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"latgen/internal/celldb"
	"latgen/internal/config"
	"latgen/internal/export"
	"latgen/internal/lattice"
	"latgen/internal/substrate"
	"latgen/internal/system"
)

var (
	requestPath string
	outputPath  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build substrates from a request file and write a .gro structure",
	Long: `Reads a YAML construction request, builds every substrate it names,
merges them into one system and writes the result as a GROMOS87 file.

Cells referenced by name are resolved against the unit-cell catalog.

Example:
  latgen build -r request.yaml -o system.gro`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&requestPath, "request", "r", "", "construction request file (required)")
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (defaults to the request's output field)")
	_ = buildCmd.MarkFlagRequired("request")
}

func runBuild(cmd *cobra.Command, args []string) error {
	req, err := config.Load(requestPath)
	if err != nil {
		return err
	}

	out := outputPath
	if out == "" {
		out = req.Output
	}
	if out == "" {
		return fmt.Errorf("no output path: set --output or the request's output field")
	}

	ctx := cmd.Context()
	var catalog *celldb.Store
	defer func() {
		if catalog != nil {
			catalog.Close()
		}
	}()

	subs := make([]*substrate.Substrate, 0, len(req.Substrates))
	for i, spec := range req.Substrates {
		cell, inline, err := spec.UnitCell()
		if err != nil {
			return err
		}
		if !inline {
			if catalog == nil {
				catalog, err = celldb.Open(ctx, dbPath)
				if err != nil {
					return err
				}
			}
			def, err := catalog.Get(ctx, spec.Cell)
			if err != nil {
				return err
			}
			cell, err = def.UnitCell()
			if err != nil {
				return err
			}
		}

		seed := spec.BuildSeed(envCfg.Seed + int64(i))
		logger.Debug("building substrate",
			zap.Int("index", i),
			zap.String("residue", spec.Residue),
			zap.Int64("seed", seed))

		sub, err := substrate.Build(cell, spec.BuildExtent(), spec.BuildPolicy(),
			spec.BuildLayers(), spec.BuildPerturbation(), spec.Residue, seed)
		if err != nil {
			var mismatch lattice.ExtentMismatchError
			if errors.As(err, &mismatch) {
				logger.Warn("exact fit unsatisfiable",
					zap.Float64("achievable_x", mismatch.Achievable.X),
					zap.Float64("achievable_y", mismatch.Achievable.Y))
			}
			return fmt.Errorf("substrate %d (%s): %w", i, spec.Residue, err)
		}
		logger.Info("substrate built",
			zap.String("residue", sub.Residue),
			zap.Int("atoms", len(sub.Atoms)),
			zap.Int("layers", len(sub.Layers)))
		subs = append(subs, sub)
	}

	sys, err := system.Merge(subs, system.Options{
		BoxPadding:    req.Merge.BoxPadding,
		MinSeparation: req.Merge.MinSeparation,
	})
	if err != nil {
		return err
	}
	for _, w := range sys.Warnings {
		logger.Warn("overlapping atoms", zap.String("pair", w.String()))
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	title := req.Title
	if title == "" {
		title = "latgen substrate"
	}
	if err := export.WriteGRO(f, sys, title); err != nil {
		return err
	}

	logger.Info("system written",
		zap.String("path", out),
		zap.Int("atoms", len(sys.Atoms)),
		zap.Int("overlaps", len(sys.Warnings)))
	return nil
}
