package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/killallgit/coffeebreak-api/pkg/config"
	"github.com/spf13/cobra"
)

// registryCmd inspects and seeds the participant registry
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the participant registry",
	Long:  `List canonical participant names, review name-matching decisions and seed the roster from a file.`,
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List canonical participants and their variants",
	Args:  cobra.NoArgs,
	RunE:  runRegistryList,
}

var registryDecisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Show recent name-matching decisions",
	Long: `Show the audit trail of name normalization, newest first.

Example:
  coffeebreak registry decisions --outcome ambiguous`,
	Args: cobra.NoArgs,
	RunE: runRegistryDecisions,
}

var registrySeedCmd = &cobra.Command{
	Use:   "seed <file.json>",
	Short: "Add canonical names and aliases from a roster file",
	Long: `Apply a roster file to the stored registry. The file maps canonical
names to known variants and raw aliases to canonical names:

  {"normalized": {"Héctor Socas": ["Hector Socas"]},
   "aliases": {"H. Socas": "Héctor Socas"}}

Existing names are never changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegistrySeed,
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryDecisionsCmd)
	registryCmd.AddCommand(registrySeedCmd)

	registryDecisionsCmd.Flags().String("outcome", "", "minted, matched or ambiguous")
	registryDecisionsCmd.Flags().Int("limit", 50, "maximum decisions to show")
}

func runRegistryList(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := newPipeline(db, cfg, false)
	if err != nil {
		return err
	}
	people, err := p.Registry().ListParticipants(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(people) == 0 {
		fmt.Fprintln(out, "Registry is empty")
		return nil
	}

	rows := make([][]string, 0, len(people))
	for _, person := range people {
		raws := make([]string, 0, len(person.Variants))
		for _, v := range person.Variants {
			raws = append(raws, v.Raw)
		}
		rows = append(rows, []string{person.Canonical, strconv.Itoa(len(raws)), strings.Join(raws, "; ")})
	}
	fmt.Fprintln(out, renderTable([]string{"Participant", "Variants", "Seen as"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft}))
	return nil
}

func runRegistryDecisions(cmd *cobra.Command, args []string) error {
	outcome, _ := cmd.Flags().GetString("outcome")
	switch outcome {
	case "", "minted", "matched", "ambiguous":
	default:
		return fmt.Errorf("unknown outcome %q (want minted, matched or ambiguous)", outcome)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := newPipeline(db, cfg, false)
	if err != nil {
		return err
	}
	decisions, err := p.Registry().ListDecisions(cmd.Context(), outcome, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(decisions) == 0 {
		fmt.Fprintln(out, "No decisions recorded")
		return nil
	}

	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		candidates := make([]string, 0, len(d.Candidates))
		for _, c := range d.Candidates {
			candidates = append(candidates, fmt.Sprintf("%s (%.2f)", c.Canonical, c.Score))
		}
		rows = append(rows, []string{
			d.CreatedAt.Format("2006-01-02 15:04"),
			d.Raw,
			d.Canonical,
			d.Outcome,
			strings.Join(candidates, ", "),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"When", "Raw", "Canonical", "Outcome", "Candidates"}, rows, nil))
	return nil
}

func runRegistrySeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := newPipeline(db, cfg, false)
	if err != nil {
		return err
	}
	added, stats, err := p.SeedRegistry(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to seed registry from %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s: %d new participants, %d new variants\n",
		args[0], added, stats.Variants)
	return nil
}
