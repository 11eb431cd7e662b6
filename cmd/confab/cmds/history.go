package cmds

import (
	"context"
	"fmt"
	"time"

	"github.com/go-go-golems/confab/pkg/conversation"
	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	glazed_settings "github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage saved conversations",
	}

	listCmd, err := NewHistoryListCommand()
	cobra.CheckErr(err)
	listCobraCmd, err := cli.BuildCobraCommandFromGlazeCommand(listCmd)
	cobra.CheckErr(err)

	exportCmd, err := NewHistoryExportCommand()
	cobra.CheckErr(err)
	exportCobraCmd, err := cli.BuildCobraCommandFromGlazeCommand(exportCmd)
	cobra.CheckErr(err)

	cmd.AddCommand(
		listCobraCmd,
		newHistoryShowCommand(),
		newHistoryDeleteCommand(),
		exportCobraCmd,
	)
	return cmd
}

// HistoryListCommand emits one row per saved conversation, newest first.
type HistoryListCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*HistoryListCommand)(nil)

func NewHistoryListCommand() (*HistoryListCommand, error) {
	glazedParameterLayer, err := glazed_settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create glazed parameter layer")
	}
	return &HistoryListCommand{
		CommandDescription: cmds.NewCommandDescription(
			"list",
			cmds.WithShort("List saved conversations, newest first"),
			cmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *HistoryListCommand) RunIntoGlazeProcessor(ctx context.Context, _ *layers.ParsedLayers, gp middlewares.Processor) error {
	deps, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	for _, e := range deps.Manager.Snapshot().History {
		created := "-"
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.Local().Format(time.DateTime)
		}
		row := types.NewRow(
			types.MRP("id", e.ID.String()),
			types.MRP("created", created),
			types.MRP("turns", len(e.Messages)),
			types.MRP("title", e.Title),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

type HistoryExportSettings struct {
	IDs []string `glazed.parameter:"ids"`
}

// HistoryExportCommand emits whole history entries, turns included. With
// --output json the result reads back as a history index.
type HistoryExportCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*HistoryExportCommand)(nil)

func NewHistoryExportCommand() (*HistoryExportCommand, error) {
	glazedParameterLayer, err := glazed_settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create glazed parameter layer")
	}
	return &HistoryExportCommand{
		CommandDescription: cmds.NewCommandDescription(
			"export",
			cmds.WithShort("Export saved conversations with all their turns"),
			cmds.WithArguments(
				parameters.NewParameterDefinition(
					"ids",
					parameters.ParameterTypeStringList,
					parameters.WithHelp("Conversations to export (default: all)"),
				),
			),
			cmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *HistoryExportCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *layers.ParsedLayers, gp middlewares.Processor) error {
	s := &HistoryExportSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, s); err != nil {
		return errors.Wrap(err, "error initializing settings")
	}

	deps, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	history := deps.Manager.Snapshot().History
	if len(s.IDs) > 0 {
		selected := conversation.HistoryIndex{}
		for _, id := range s.IDs {
			e, ok := history.Find(conversation.ID(id))
			if !ok {
				return errors.Errorf("no conversation with id %s", id)
			}
			selected = append(selected, e)
		}
		history = selected
	}

	for _, e := range history {
		messages := make([]map[string]interface{}, 0, len(e.Messages))
		for _, t := range e.Messages {
			messages = append(messages, map[string]interface{}{
				"sender": string(t.Sender),
				"text":   t.Text,
			})
		}
		row := types.NewRow(
			types.MRP("id", e.ID.String()),
			types.MRP("title", e.Title),
			types.MRP("createdAt", e.CreatedAt.UTC().Format(time.RFC3339Nano)),
			types.MRP("messages", messages),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the turns of a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			e, ok := deps.Manager.Snapshot().History.Find(conversation.ID(args[0]))
			if !ok {
				return errors.Errorf("no conversation with id %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n\n", e.Title)
			for _, t := range e.Messages {
				fmt.Fprintln(cmd.OutOrStdout(), t.View())
			}
			return nil
		},
	}
}

func newHistoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete saved conversations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deps, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			for _, id := range args {
				if !deps.Manager.Snapshot().History.Contains(conversation.ID(id)) {
					fmt.Fprintf(cmd.ErrOrStderr(), "no conversation with id %s\n", id)
					continue
				}
				if err := deps.Manager.Delete(ctx, conversation.ID(id)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return nil
		},
	}
}
