package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtroode/taskboard/internal/service"
	"github.com/dtroode/taskboard/internal/storage/minio"
)

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(opts *RootOptions) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Export the event log to object storage",
		Long: `Write the whole event log as JSON Lines to the configured bucket under
events/<timestamp>.jsonl. An existing object is never replaced.

Examples:
  taskboard archive
  taskboard archive --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := opts.Config

			objects, err := minio.NewClient(ctx, minio.Options{
				Endpoint:  cfg.Archive.Endpoint,
				AccessKey: cfg.Archive.AccessKey,
				SecretKey: cfg.Archive.SecretKey,
				Bucket:    cfg.Archive.Bucket,
				UseSSL:    cfg.Archive.UseSSL,
			})
			if err != nil {
				return err
			}

			storage, err := openStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer storage.Close()

			archive := service.NewArchive(storage.Events(), objects, opts.Logger)

			if list {
				infos, err := archive.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Key, info.Size, info.LastModified.UTC().Format(time.RFC3339))
				}
				return tw.Flush()
			}

			result, err := archive.Export(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %d events to %s/%s\n", result.Events, cfg.Archive.Bucket, result.Key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list existing exports instead of writing one")

	return cmd
}
