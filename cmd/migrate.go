package cmd

import (
	"fmt"
	"strconv"

	"github.com/killallgit/coffeebreak-api/internal/database"
	"github.com/killallgit/coffeebreak-api/pkg/config"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the schema of the Coffee Break database.

Tables are created and extended with GORM auto migration; columns are
never dropped, so there is no rollback.

Available subcommands:
  up      - Create or update every table
  status  - Show which tables exist and how many rows they hold`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update every table",
	RunE:  runMigrateUp,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		for _, model := range database.Models() {
			fmt.Fprintf(out, "  would migrate %T\n", model)
		}
		return nil
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s is up to date (%d tables)\n", cfg.Database.Path, len(database.Models()))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, pending := tableStatus(db.DB)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintln(out, renderTable([]string{"Table", "Status", "Rows"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	if pending > 0 {
		fmt.Fprintf(out, "%d table(s) missing, run 'coffeebreak migrate up'\n", pending)
	}
	return nil
}

// tableStatus reports every engine table and its row count
func tableStatus(db *gorm.DB) ([][]string, int) {
	migrator := db.Migrator()
	rows := make([][]string, 0, len(database.Models()))
	pending := 0
	for _, model := range database.Models() {
		stmt := &gorm.Statement{DB: db}
		name := fmt.Sprintf("%T", model)
		if err := stmt.Parse(model); err == nil {
			name = stmt.Schema.Table
		}

		if !migrator.HasTable(model) {
			pending++
			rows = append(rows, []string{name, "missing", "-"})
			continue
		}
		var count int64
		db.Model(model).Count(&count)
		rows = append(rows, []string{name, "ok", strconv.FormatInt(count, 10)})
	}
	return rows, pending
}
