package main

import (
	"os"

	"github.com/go-go-golems/confab/cmd/confab/cmds"
	"github.com/go-go-golems/confab/pkg/logging"
	"github.com/go-go-golems/confab/pkg/settings"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "confab",
	Short: "confab is a terminal chat client that keeps a local history of conversations",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// reinitialize the logger because we can now parse --log-level and co
		// from the command line flag
		initLogger()
	},
	SilenceUsage: true,
}

func initLogger() {
	logLevel := viper.GetString("log-level")
	verbose := viper.GetBool("verbose")
	if verbose && logLevel != "trace" {
		logLevel = "debug"
	}

	err := logging.InitLogger(logging.Config{
		Level:      logLevel,
		File:       viper.GetString("log-file"),
		Format:     viper.GetString("log-format"),
		WithCaller: viper.GetBool("with-caller"),
	})
	cobra.CheckErr(err)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// logging flags
	rootCmd.PersistentFlags().Bool("with-caller", false, "Log caller")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (json, text)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this rotated file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.confab/config.yaml)")

	// client flags
	rootCmd.PersistentFlags().String("api-url", settings.DefaultAPIURL, "Base URL of the chat backend, or \"echo\" to answer locally")
	rootCmd.PersistentFlags().String("store", "file", "History store backend (memory, file, sqlite)")
	rootCmd.PersistentFlags().String("store-path", settings.DefaultDataDir(), "Directory (file) or database file (sqlite) of the history store")
	rootCmd.PersistentFlags().Duration("timeout", settings.DefaultTimeout, "Timeout of a single chat request")
	rootCmd.PersistentFlags().String("client-id", "", "Client id sent to the backend to keep per-client context")

	// parse the flags one time just to catch --config
	configFile := ""
	for idx, arg := range os.Args {
		if arg == "--config" && len(os.Args) > idx+1 {
			configFile = os.Args[idx+1]
		}
	}

	if err := settings.InitConfig(rootCmd, configFile); err != nil {
		log.Fatal().Err(err).Msg("could not initialize configuration")
	}
	// picks up the config file values, --verbose on the command line is only
	// honored once the flags are parsed
	initLogger()

	rootCmd.AddCommand(
		cmds.NewChatCommand(),
		cmds.NewSendCommand(),
		cmds.NewHistoryCommand(),
		cmds.NewLoginCommand(),
		cmds.NewSignupCommand(),
		cmds.NewLogoutCommand(),
		cmds.NewServeCommand(),
		cmds.NewConfigCommand(),
	)
}
