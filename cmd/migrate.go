package cmd

import (
	"log"

	"github.com/frahmantamala/guard-deployment/db"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	conn, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	defer conn.Close()

	if migrateRollback {
		if err := db.MigrateDown(conn.DB, cfg.Database.Driver); err != nil {
			log.Fatalf("%v", err)
		}
		log.Println("rolled back the latest migration")
		return nil
	}

	if err := db.MigrateUp(conn.DB, cfg.Database.Driver); err != nil {
		log.Fatalf("%v", err)
	}
	log.Println("migrations applied")
	return nil
}
