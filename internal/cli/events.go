package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dtroode/taskboard/internal/model"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Entity string
	ID     string
	Format string
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the event log",
		Long: `Print recorded events, oldest first.

Examples:
  taskboard events
  taskboard events --entity TASK
  taskboard events --entity USER --id 5d3e8a36-0f1c-4b8e-9a57-2f6c1d9e4b70 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Entity, "entity", "", "filter by entity type (TASK|USER)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "filter by entity id, requires --entity")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	return cmd
}

func runEvents(cmd *cobra.Command, opts *EventsOptions) error {
	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}
	if opts.ID != "" && opts.Entity == "" {
		return fmt.Errorf("--id requires --entity")
	}

	storage, err := openStorage(cmd.Context(), opts.Config)
	if err != nil {
		return err
	}
	defer storage.Close()

	events, err := queryEvents(cmd.Context(), storage.Events(), opts.Entity, opts.ID)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return writeEventsJSON(cmd.OutOrStdout(), events)
	}
	return writeEventsText(cmd.OutOrStdout(), events)
}

func queryEvents(ctx context.Context, store model.EventStore, entity, id string) ([]model.Event, error) {
	if entity == "" {
		return store.GetAll(ctx)
	}

	entityType, err := model.ParseEntityType(entity)
	if err != nil {
		return nil, err
	}

	if id != "" {
		entityID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", id, err)
		}
		return store.GetByEntity(ctx, entityType, entityID)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := []model.Event{}
	for _, event := range all {
		if event.Entity == entityType {
			filtered = append(filtered, event)
		}
	}
	return filtered, nil
}

func writeEventsJSON(w io.Writer, events []model.Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

func writeEventsText(w io.Writer, events []model.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No events recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tTYPE\tENTITY\tENTITY ID\tUSER ID")
	for _, e := range events {
		userID := "-"
		if e.UserID != nil {
			userID = e.UserID.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.UTC().Format(time.RFC3339), e.Type, e.Entity, e.EntityID, userID)
	}
	return tw.Flush()
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
