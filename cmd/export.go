package cmd

import (
	"fmt"
	"strconv"

	"github.com/killallgit/coffeebreak-api/internal/services/dataset"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
	"github.com/killallgit/coffeebreak-api/pkg/config"
	"github.com/killallgit/coffeebreak-api/pkg/timecode"
	"github.com/spf13/cobra"
)

// exportCmd writes the master dataset
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the master dataset",
	Long: `Write every stored episode, ordered by number, as the master dataset
document. A <name>.info.json file with the dataset statistics is written
next to it.

Example:
  coffeebreak export
  coffeebreak export --output ./out/episodes.jsonl --format jsonl`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "dataset path (default: export.path from config)")
	exportCmd.Flags().String("format", string(dataset.FormatJSON), "json or jsonl")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = cfg.Export.Path
	}
	format, _ := cmd.Flags().GetString("format")
	switch dataset.Format(format) {
	case dataset.FormatJSON, dataset.FormatJSONL:
	default:
		return fmt.Errorf("unsupported format %q (want json or jsonl)", format)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reader := episodes.NewService(nil, episodes.NewRepository(db.DB))
	ds, err := dataset.NewService(reader).Generate(cmd.Context(), dataset.GenerateRequest{
		Path:   path,
		Format: dataset.Format(format),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := ds.Stats
	fmt.Fprintln(out, renderTable([]string{"Dataset", ds.Path}, [][]string{
		{"Episodes", strconv.Itoa(stats.Episodes)},
		{"Dual releases", strconv.Itoa(stats.DualEpisodes)},
		{"Parts", strconv.Itoa(stats.Parts)},
		{"Topics", strconv.Itoa(stats.Topics)},
		{"Participants", strconv.Itoa(stats.Participants)},
		{"Reference links", strconv.Itoa(stats.RefLinks)},
		{"Total duration", timecode.Format(stats.TotalDurationSeconds)},
	}, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintf(out, "Statistics written to %s\n", ds.MetadataPath)
	return nil
}
