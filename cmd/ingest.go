package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/internal/services/dataset"
	"github.com/killallgit/coffeebreak-api/internal/services/workers"
	"github.com/killallgit/coffeebreak-api/pkg/config"
	"github.com/spf13/cobra"
)

// ingestCmd runs bundle files through the engine
var ingestCmd = &cobra.Command{
	Use:   "ingest <bundles.json>...",
	Short: "Extract episodes from scraped bundles",
	Long: `Run one or more bundle files through the extraction engine and store
the assembled episodes.

Each file holds one bundle object or an array of bundles; "-" reads
standard input. Bundles for the same episode are merged in input order.
One failing episode never stops the rest of the batch.

Example:
  coffeebreak ingest scraped/2024-05.json
  coffeebreak ingest --export ./data/master_dataset.json scraped/*.json
  cat bundle.json | coffeebreak ingest -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("export", "", "write the master dataset here after the run")
	ingestCmd.Flags().Int("workers", 0, "episodes processed in parallel (overrides config)")
	ingestCmd.Flags().String("run-id", "", "run id recorded with every flag (default: random)")
	ingestCmd.Flags().BoolP("verbose", "v", false, "log every diagnostic flag as it is raised")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Processing.Workers = workers
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	bundles, err := readBundles(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := newPipeline(db, cfg, verbose)
	if err != nil {
		return err
	}

	var poolOpts []workers.PoolOption
	if runID, _ := cmd.Flags().GetString("run-id"); runID != "" {
		poolOpts = append(poolOpts, workers.WithRunID(runID))
	}

	result, runErr := p.Run(cmd.Context(), bundles, poolOpts...)
	if result != nil {
		printBatch(cmd.OutOrStdout(), result)
	}
	if runErr != nil {
		return runErr
	}

	if exportPath, _ := cmd.Flags().GetString("export"); exportPath != "" {
		ds, err := dataset.NewService(p.Episodes()).Generate(cmd.Context(), dataset.GenerateRequest{Path: exportPath})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset written to %s (%d episodes)\n", ds.Path, ds.Stats.Episodes)
	}
	return nil
}

// readBundles decodes every file argument; "-" is standard input
func readBundles(stdin io.Reader, paths []string) ([]models.Bundle, error) {
	var all []models.Bundle
	for _, path := range paths {
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		bundles, err := models.DecodeBundles(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, bundles...)
	}
	return all, nil
}

func printBatch(out io.Writer, result *workers.BatchResult) {
	rows := make([][]string, 0, len(result.Episodes))
	for _, ep := range result.Episodes {
		errText := ""
		if ep.Err != nil {
			errText = ep.Err.Error()
		}
		number := ep.Number
		if number == "" {
			number = "?"
		}
		rows = append(rows, []string{
			number,
			string(ep.Status),
			strconv.Itoa(ep.Bundles),
			strconv.Itoa(len(ep.Flags)),
			errText,
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Episode", "Status", "Bundles", "Flags", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "Run %s: %d created, %d updated, %d failed, %d flags in %s\n",
		result.RunID,
		result.Count(workers.StatusCreated),
		result.Count(workers.StatusUpdated),
		result.Count(workers.StatusFailed),
		result.FlagCount(),
		result.Finished.Sub(result.Started).Round(time.Millisecond),
	)
}
