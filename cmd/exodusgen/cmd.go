package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/batchatco/go-native-exodus/exodus"
)

// Version is the version of exodusgen.
const Version = "0.1.0"

var (
	verbose       int
	output        string
	noClobber     bool
	maxNameLength int
	showValues    bool
)

// Root is the main command.
var Root = &cobra.Command{
	Use:   "exodusgen",
	Short: "Write and inspect Exodus II mesh files.",
	Long: `exodusgen builds Exodus II finite-element mesh files from a mesh
description written in TOML or YAML, and inspects the files it writes.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRun: func(*cobra.Command, []string) {
		exodus.SetLogLevel(verbose)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("exodusgen v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

var buildCmd = &cobra.Command{
	Use:   "build mesh.toml|mesh.yaml",
	Short: "Build an Exodus file from a mesh description.",
	Long: `build writes the mesh described in the given file. The output is the
description's name with the extension .e unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := LoadMesh(args[0])
		if err != nil {
			return err
		}
		out := output
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".e"
		}
		opts := []exodus.Option{exodus.WithClobber(!noClobber)}
		if maxNameLength > 0 {
			opts = append(opts, exodus.WithMaxNameLength(maxNameLength))
		}
		if err := m.Build(out, opts...); err != nil {
			return err
		}
		cmd.Printf("wrote %s\n", out)
		return nil
	},
	DisableAutoGenTag: true,
}

var dumpCmd = &cobra.Command{
	Use:   "dump file.e",
	Short: "Print the layout of a file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dump(cmd.OutOrStdout(), args[0], showValues)
	},
	DisableAutoGenTag: true,
}

var verifyCmd = &cobra.Command{
	Use:   "verify file.e",
	Short: "Check a file with an independent NetCDF reader.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return verify(cmd.OutOrStdout(), args[0])
	},
	DisableAutoGenTag: true,
}

func init() {
	Root.PersistentFlags().IntVarP(&verbose, "verbose", "v", 2, "log level, 0 (fatal only) to 3 (every allocation)")
	buildCmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	buildCmd.Flags().BoolVar(&noClobber, "no-clobber", false, "refuse to overwrite an existing file")
	buildCmd.Flags().IntVar(&maxNameLength, "max-name-length", 0, "longest name accepted (default 32)")
	dumpCmd.Flags().BoolVar(&showValues, "values", false, "also print the values of every variable")
	Root.AddCommand(versionCmd, buildCmd, dumpCmd, verifyCmd)
}
