package cmds

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/confab/pkg/conversation"
	"github.com/go-go-golems/confab/pkg/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewSendCommand() *cobra.Command {
	var continueID string

	cmd := &cobra.Command{
		Use:   "send <message...>",
		Short: "Send one message and print the reply",
		Long: "Send one message in a new conversation, or in an existing one with --continue. " +
			"The exchange is saved to the history like in the interactive chat.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deps, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			if continueID != "" {
				ok, err := deps.Manager.Select(ctx, conversation.ID(continueID))
				if err != nil {
					return err
				}
				if !ok {
					return errors.Errorf("no conversation with id %s", continueID)
				}
			}

			ex, err := deps.Manager.Submit(ctx, strings.Join(args, " "))
			switch {
			case errors.Is(err, session.ErrPersist):
				log.Warn().Err(err).Msg("reply received but history was not saved")
			case err != nil:
				return err
			}
			if ex.Skipped {
				return errors.New("message is empty")
			}

			fmt.Fprintln(cmd.OutOrStdout(), ex.Assistant.Text)
			if ex.Failed {
				return errors.Wrap(ex.RemoteErr, "chat request failed")
			}
			log.Debug().Str("id", ex.ID.String()).Bool("promoted", ex.Promoted).Msg("exchange saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&continueID, "continue", "", "Id of a saved conversation to continue")
	return cmd
}
