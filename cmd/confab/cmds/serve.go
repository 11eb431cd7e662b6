package cmds

import (
	"os/signal"
	"syscall"

	"github.com/go-go-golems/confab/pkg/logging"
	"github.com/go-go-golems/confab/pkg/server"
	"github.com/go-go-golems/confab/pkg/settings"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference chat backend",
		Long: "Serve POST /chat, /signup, /login and a health check. Replies come from an " +
			"OpenAI chat model when an API key is configured and from the built-in support FAQ otherwise.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			s := settings.Get().Server

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := buildServer(s)
			if err != nil {
				return err
			}

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				return srv.Run(egCtx, s.Addr)
			})
			return eg.Wait()
		},
	}

	cmd.Flags().String("server-addr", settings.DefaultServerAddr, "Listen address")
	cmd.Flags().String("server-db", "", "SQLite database for user accounts (default in the data directory)")
	cmd.Flags().String("openai-api-key", "", "OpenAI API key; the FAQ bot answers when empty")
	cmd.Flags().String("openai-base-url", "", "OpenAI compatible API base URL")
	cmd.Flags().String("openai-model", settings.DefaultModel, "Chat model")
	cmd.Flags().StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins")
	cmd.Flags().String("chat-log", "", "Append every exchange to this rotated file")
	cmd.Flags().Int("memory-size", server.DefaultMemorySize, "Messages of context kept per client")

	return cmd
}

func buildServer(s settings.ServerSettings) (*server.Server, error) {
	options := []server.Option{
		server.WithCORSOrigins(s.CORSOrigins...),
		server.WithMemory(server.NewMemory(viper.GetInt("memory-size"))),
	}

	if s.DB != "" {
		db, err := server.OpenUserDB(s.DB)
		if err != nil {
			return nil, err
		}
		options = append(options, server.WithUsers(server.NewUsers(db)))
	}

	if s.OpenAIKey != "" {
		r, err := server.NewOpenAIResponder(s.OpenAIKey, viper.GetString("openai-base-url"), s.OpenAIModel)
		if err != nil {
			return nil, err
		}
		log.Info().Str("model", s.OpenAIModel).Msg("answering with openai")
		options = append(options, server.WithResponder(r))
	} else {
		log.Info().Msg("answering with the support FAQ")
	}

	if s.ChatLog != "" {
		options = append(options, server.WithChatLog(server.NewChatLog(logging.NewRotatingFile(s.ChatLog))))
	}

	return server.New(options...), nil
}
