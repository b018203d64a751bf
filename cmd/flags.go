package cmd

import (
	"fmt"
	"time"

	"github.com/killallgit/coffeebreak-api/internal/assembler"
	"github.com/killallgit/coffeebreak-api/internal/services/cleanup"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
	"github.com/killallgit/coffeebreak-api/pkg/config"
	"github.com/spf13/cobra"
)

// flagsCmd lists stored diagnostic flags
var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "List diagnostic flags raised during ingestion",
	Long: `List the diagnostic flags recorded by previous runs, newest first.

Example:
  coffeebreak flags --episode 42
  coffeebreak flags --kind duration_mismatch --limit 20`,
	Args: cobra.NoArgs,
	RunE: runFlags,
}

var flagsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete flags older than the retention period",
	Long: `Delete diagnostic flags older than --older-than, or diagnostics.retention
from config when the flag is not given. The server does this periodically.`,
	Args: cobra.NoArgs,
	RunE: runFlagsPrune,
}

func init() {
	rootCmd.AddCommand(flagsCmd)
	flagsCmd.AddCommand(flagsPruneCmd)

	flagsPruneCmd.Flags().Duration("older-than", 0, "age cutoff, e.g. 720h (default: diagnostics.retention)")

	flagsCmd.Flags().String("run-id", "", "only flags from this run")
	flagsCmd.Flags().String("episode", "", "only flags for this episode number")
	flagsCmd.Flags().String("kind", "", "only flags of this kind")
	flagsCmd.Flags().Int("limit", 100, "maximum flags to show")
}

func runFlags(cmd *cobra.Command, args []string) error {
	filter := episodes.FlagFilter{}
	filter.RunID, _ = cmd.Flags().GetString("run-id")
	filter.Kind, _ = cmd.Flags().GetString("kind")
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	if number, _ := cmd.Flags().GetString("episode"); number != "" {
		normalized, ok := assembler.NormalizeNumber(number)
		if !ok {
			return fmt.Errorf("invalid episode number %q", number)
		}
		filter.Episode = normalized
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	flags, err := episodes.NewFlagStore(db.DB).ListFlags(cmd.Context(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(flags) == 0 {
		fmt.Fprintln(out, "No flags recorded")
		return nil
	}

	rows := make([][]string, 0, len(flags))
	for _, f := range flags {
		rows = append(rows, []string{f.Episode, f.Part, f.Kind, f.Message, f.RunID})
	}
	fmt.Fprintln(out, renderTable([]string{"Episode", "Part", "Kind", "Message", "Run"}, rows, nil))
	return nil
}

func runFlagsPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	maxAge, _ := cmd.Flags().GetDuration("older-than")
	if maxAge <= 0 {
		maxAge = cfg.Diagnostics.Retention
	}
	if maxAge <= 0 {
		return fmt.Errorf("no retention configured; pass --older-than")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := cleanup.NewService(episodes.NewFlagStore(db.DB), maxAge, time.Hour).RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d flags older than %v\n", removed, maxAge)
	return nil
}
