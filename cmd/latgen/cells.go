package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"latgen/internal/celldb"
	"latgen/internal/lattice"
)

var cellsCmd = &cobra.Command{
	Use:   "cells",
	Short: "Manage the unit-cell catalog",
}

var cellsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog cells",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := celldb.Open(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		defs, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, d := range defs {
			fmt.Printf("%-16s %-10s a=%.4g nm, %d atom template(s)\n",
				d.Name, d.Kind, d.A, len(d.Templates))
		}
		return nil
	},
}

var cellsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print one cell definition as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := celldb.Open(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		def, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return yaml.NewEncoder(os.Stdout).Encode(cellFile{
			Name:      def.Name,
			Kind:      string(def.Kind),
			A:         def.A,
			B:         def.B,
			Gamma:     def.Gamma,
			Templates: def.Templates,
		})
	},
}

var cellsPutCmd = &cobra.Command{
	Use:   "put [file]",
	Short: "Add or replace a cell definition from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var cf cellFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return err
		}
		if cf.Name == "" {
			return fmt.Errorf("cell definition needs a name")
		}

		store, err := celldb.Open(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Put(cmd.Context(), celldb.Def{
			Name:      cf.Name,
			Kind:      lattice.Kind(cf.Kind),
			A:         cf.A,
			B:         cf.B,
			Gamma:     cf.Gamma,
			Templates: cf.Templates,
		}); err != nil {
			return err
		}
		fmt.Printf("stored cell %q\n", cf.Name)
		return nil
	},
}

var cellsRmCmd = &cobra.Command{
	Use:   "rm [name]",
	Short: "Remove a cell definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := celldb.Open(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("removed cell %q\n", args[0])
		return nil
	},
}

// cellFile is the YAML shape used by `cells show` and `cells put`.
type cellFile struct {
	Name      string                 `yaml:"name"`
	Kind      string                 `yaml:"kind"`
	A         float64                `yaml:"a"`
	B         float64                `yaml:"b"`
	Gamma     float64                `yaml:"gamma"`
	Templates []lattice.AtomTemplate `yaml:"templates"`
}

func init() {
	cellsCmd.AddCommand(cellsListCmd)
	cellsCmd.AddCommand(cellsShowCmd)
	cellsCmd.AddCommand(cellsPutCmd)
	cellsCmd.AddCommand(cellsRmCmd)
}
