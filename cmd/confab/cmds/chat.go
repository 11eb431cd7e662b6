package cmds

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/confab/pkg/events"
	"github.com/go-go-golems/confab/pkg/session"
	"github.com/go-go-golems/confab/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func NewChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			router, err := events.NewEventRouter(events.WithVerbose(viper.GetBool("verbose")))
			if err != nil {
				return err
			}
			defer func() {
				_ = router.Close()
			}()
			publisher := events.NewPublisherManager()
			publisher.SubscribePublisher(events.TopicHistory, router.Publisher)

			deps, err := newSession(ctx, session.WithPublisher(publisher))
			if err != nil {
				return err
			}
			defer deps.Close()

			if u, ok := deps.Manager.User(); ok {
				log.Debug().Str("user", u.Email).Msg("signed in")
			}

			eg, egCtx := errgroup.WithContext(ctx)
			model := ui.NewModel(ui.NewSessionBackend(ctx, deps.Manager))
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(egCtx))

			router.AddHandler("tui", events.TopicHistory, events.HistoryHandler(ui.SendHistoryEvents(p)))
			router.AddHandler("log", events.TopicHistory, events.LogHistoryEvent)

			eg.Go(func() error {
				return router.Run(egCtx)
			})
			// events published before the handlers subscribed would be lost
			select {
			case <-router.Running():
			case <-egCtx.Done():
				return eg.Wait()
			}

			var final tea.Model
			var runErr error
			eg.Go(func() error {
				defer cancel()
				final, runErr = p.Run()
				return nil
			})
			if err := eg.Wait(); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}

			if m, ok := final.(ui.Model); ok && m.LoggedOut() {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out. Local history was removed.")
			}
			return nil
		},
	}
}
