package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"priceintel/internal/infrastructure/db"
	"priceintel/internal/internaldata"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Load the sales history CSV into PostgreSQL",
		Long:  "Creates the sales_data table when missing and upserts every row of the configured CSV file",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()

	csvStore, err := internaldata.NewCSVStore(cfg.Sales.CSVPath)
	if err != nil {
		return err
	}

	conn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	pg := internaldata.NewPostgresStore(conn)
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}

	rows := csvStore.Rows()
	for i, row := range rows {
		if err := pg.Insert(ctx, row); err != nil {
			return err
		}
		if (i+1)%1000 == 0 {
			log.Info().Int("migrated", i+1).Int("total", len(rows)).Msg("Migration progress")
		}
	}

	log.Info().Int("rows", len(rows)).Msg("Migration complete")
	return nil
}
