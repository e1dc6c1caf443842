package cmd

import (
	"fmt"

	"github.com/deckbinder/deckbinder/binder/database/repositories"
	"github.com/deckbinder/deckbinder/binder/services"
	"github.com/spf13/cobra"
)

var suggestLimit int

var suggestCMD = &cobra.Command{
	Use:   "suggest <query>",
	Short: "autocomplete card names for a partial query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := services.NewSuggestService(repositories.NewCardRepository(db.BunDB()))
		if err != nil {
			return err
		}
		if err := svc.Refresh(ctx); err != nil {
			return err
		}

		for _, name := range svc.Suggest(args[0], suggestLimit) {
			fmt.Println(name)
		}
		return nil
	},
}

var snapshotsCMD = &cobra.Command{
	Use:   "snapshots",
	Short: "list published dataset snapshot versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		spaces, err := services.NewSpacesDatasetService(ctx, cfg.Spaces)
		if err != nil {
			return err
		}
		versions, err := spaces.ListSnapshots(ctx)
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Println(v)
		}
		return nil
	},
}

func init() {
	suggestCMD.Flags().IntVar(&suggestLimit, "limit", 0, "maximum suggestions, 0 for the default cap")
}
