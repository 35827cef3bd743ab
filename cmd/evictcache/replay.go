package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/evictcache/internal/trace"
)

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Replay an operation script against a fresh cache",
	Long: `Replay reads a script (from file, or stdin when omitted) with one
operation per line and prints "<op> -> <result>" for each:

  put <key> <value>   get <key>   peek <key>   remove <key>
  len                 keys        purge

Lines starting with '#' are comments. Missing keys print <miss>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		in = f
	}

	ops, err := trace.Parse(in)
	if err != nil {
		return err
	}

	c, err := newCache[string](log, nil)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return trace.Run(c, ops, cmd.OutOrStdout(), log.Named("replay"))
}
