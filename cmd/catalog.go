package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	catalogapp "spaceledger/internal/catalog/application"
	catalogpg "spaceledger/internal/catalog/infrastructure/postgres"
)

var catalogListSource string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage spaces, rooms and source mappings",
}

var catalogLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a catalog definition file",
	Long: `Load spaces, rooms and source mappings from a yaml file. Entries are
upserted by stable ids derived from their names, so reloading an edited
file updates the catalog in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		service, err := catalogapp.NewService(catalogpg.NewSpaceRepository(db), catalogpg.NewMappingRepository(db))
		if err != nil {
			return err
		}
		summary, err := service.LoadFile(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Printf("catalog loaded: %d spaces, %d rooms, %d mappings\n", summary.Spaces, summary.Rooms, summary.Mappings)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mappings for a source",
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogListSource == "" {
			return errors.New("--source is required")
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		service, err := catalogapp.NewService(catalogpg.NewSpaceRepository(db), catalogpg.NewMappingRepository(db))
		if err != nil {
			return err
		}
		mappings, err := service.ListMappings(cmd.Context(), catalogListSource)
		if err != nil {
			return err
		}
		if len(mappings) == 0 {
			fmt.Printf("no mappings for source %q\n", catalogListSource)
			return nil
		}
		for _, m := range mappings {
			discriminator := m.Discriminator
			if discriminator == "" {
				discriminator = "-"
			}
			fmt.Printf("%3d  %-30s %-12s %s\n", m.Position, m.DisplayName, discriminator, m.Target())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogLoadCmd)
	catalogCmd.AddCommand(catalogListCmd)

	catalogListCmd.Flags().StringVar(&catalogListSource, "source", "", "source id to list mappings for")
}
