package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/killallgit/coffeebreak-api/internal/database"
	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/pipeline"
	"github.com/killallgit/coffeebreak-api/pkg/config"
)

// openDatabase opens the configured database and brings its schema up to date
func openDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// newPipeline builds the extraction pipeline from configuration. Flags are
// echoed to the log when verbose is set.
func newPipeline(db *database.DB, cfg *config.Config, verbose bool) (*pipeline.Pipeline, error) {
	var opts []pipeline.Option
	if verbose {
		opts = append(opts, pipeline.WithSink(diagnostics.LogSink{}))
	}
	return pipeline.New(db.DB, pipeline.OptionsFromConfig(cfg), opts...)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
