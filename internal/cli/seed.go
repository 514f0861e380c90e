package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/taskboard/internal/seed"
	"github.com/dtroode/taskboard/internal/service"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var fixturesPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all users and tasks with development data",
		Long: `Delete every user and task, then load the fixture users and tasks.

The first task is assigned to the first user and the last task to the last
user. Deletions and creations are recorded in the event log.

Examples:
  taskboard seed
  taskboard seed --fixtures ./fixtures.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := readFixtures(fixturesPath)
			if err != nil {
				return err
			}

			storage, err := openStorage(cmd.Context(), opts.Config)
			if err != nil {
				return err
			}
			defer storage.Close()

			p, err := service.NewPersistence(opts.Config.PersistenceMode, storage, opts.Logger)
			if err != nil {
				return err
			}

			result, err := seed.NewLoader(p.Tasks, p.Users, opts.Logger).Load(cmd.Context(), fixtures)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users and %d tasks\n", len(result.Users), len(result.Tasks))
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturesPath, "fixtures", "", "YAML fixture file (default: built-in fixtures)")

	return cmd
}

func readFixtures(path string) (seed.Fixtures, error) {
	if path == "" {
		return seed.DefaultFixtures()
	}
	return seed.LoadFixtures(path)
}
