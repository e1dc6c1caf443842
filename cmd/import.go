package cmd

import (
	"os"

	"github.com/deckbinder/deckbinder/binder/database/repositories"
	"github.com/deckbinder/deckbinder/binder/logger"
	"github.com/deckbinder/deckbinder/binder/services"
	"github.com/spf13/cobra"
)

var (
	importDir      string
	importSnapshot string
)

var importCMD = &cobra.Command{
	Use:   "import",
	Short: "load a card dataset into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openDB(ctx)
		if err != nil {
			logger.LogError("Failed to connect to database", err)
			return err
		}
		defer db.Close()

		dir := importDir
		snapshot := importSnapshot
		if snapshot == "" && dir == "" && cfg.Dataset.Dir == "" {
			snapshot = cfg.Dataset.Version
		}
		if snapshot != "" {
			spaces, err := services.NewSpacesDatasetService(ctx, cfg.Spaces)
			if err != nil {
				return err
			}
			tmp, err := os.MkdirTemp("", "deckbinder-dataset-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmp)

			if err := spaces.DownloadSnapshot(ctx, snapshot, tmp); err != nil {
				return err
			}
			dir = tmp
		}
		if dir == "" {
			dir = cfg.Dataset.Dir
		}

		bunDB := db.BunDB()
		importer, err := services.NewDatasetService(
			repositories.NewCardRepository(bunDB),
			repositories.NewCardSetRepository(bunDB),
			repositories.NewCatalogRepository(bunDB),
		)
		if err != nil {
			return err
		}

		return importer.ImportDir(ctx, dir)
	},
}

func init() {
	importCMD.Flags().StringVar(&importDir, "dir", "", "dataset checkout directory")
	importCMD.Flags().StringVar(&importSnapshot, "snapshot", "", "dataset snapshot version to download")
}
