package settings

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	AppName   = "confab"
	EnvPrefix = "CONFAB"

	DefaultAPIURL     = "http://localhost:8000"
	DefaultTimeout    = 30 * time.Second
	DefaultServerAddr = ":8000"
	DefaultModel      = "gpt-4o-mini"
)

// Settings is the effective configuration after flags, environment and the
// config file have been merged.
type Settings struct {
	APIURL    string        `yaml:"api-url"`
	Store     string        `yaml:"store"`
	StorePath string        `yaml:"store-path"`
	Timeout   time.Duration `yaml:"timeout"`
	ClientID  string        `yaml:"client-id,omitempty"`

	Log    LogSettings    `yaml:"log"`
	Server ServerSettings `yaml:"server"`
}

type LogSettings struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file,omitempty"`
	WithCaller bool   `yaml:"with-caller"`
}

type ServerSettings struct {
	Addr        string   `yaml:"addr"`
	DB          string   `yaml:"db"`
	OpenAIKey   string   `yaml:"openai-api-key,omitempty"`
	OpenAIModel string   `yaml:"openai-model"`
	CORSOrigins []string `yaml:"cors-origins"`
	ChatLog     string   `yaml:"chat-log,omitempty"`
}

// DefaultDataDir is where the file and sqlite stores and the server database
// live unless configured otherwise.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(dir, AppName)
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	dataDir := DefaultDataDir()
	v.SetDefault("api-url", DefaultAPIURL)
	v.SetDefault("store", "file")
	v.SetDefault("store-path", dataDir)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
	v.SetDefault("server-addr", DefaultServerAddr)
	v.SetDefault("server-db", filepath.Join(dataDir, "users.db"))
	v.SetDefault("openai-model", DefaultModel)
	v.SetDefault("cors-origins", []string{"*"})
}

// InitConfig wires the global viper instance: .env file, config file search
// path, CONFAB_ environment variables and the persistent flags of root.
func InitConfig(root *cobra.Command, configFile string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	viper.SetEnvPrefix(EnvPrefix)
	SetDefaults(viper.GetViper())

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/." + AppName)
		if xdgConfigPath, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(xdgConfigPath, AppName))
		}
	}

	err := viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// no config file, defaults and environment only
	} else if err != nil {
		return errors.Wrap(err, "read config")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if root != nil {
		if err := viper.BindPFlags(root.PersistentFlags()); err != nil {
			return err
		}
	}

	log.Debug().Str("config", viper.ConfigFileUsed()).Msg("loaded configuration")
	return nil
}

// FromViper reads Settings out of v. The keys are the flat flag names.
func FromViper(v *viper.Viper) *Settings {
	return &Settings{
		APIURL:    v.GetString("api-url"),
		Store:     v.GetString("store"),
		StorePath: v.GetString("store-path"),
		Timeout:   v.GetDuration("timeout"),
		ClientID:  v.GetString("client-id"),
		Log: LogSettings{
			Level:      v.GetString("log-level"),
			Format:     v.GetString("log-format"),
			File:       v.GetString("log-file"),
			WithCaller: v.GetBool("with-caller"),
		},
		Server: ServerSettings{
			Addr:        v.GetString("server-addr"),
			DB:          v.GetString("server-db"),
			OpenAIKey:   v.GetString("openai-api-key"),
			OpenAIModel: v.GetString("openai-model"),
			CORSOrigins: v.GetStringSlice("cors-origins"),
			ChatLog:     v.GetString("chat-log"),
		},
	}
}

func Get() *Settings {
	return FromViper(viper.GetViper())
}

// YAML renders s with secrets masked.
func (s *Settings) YAML() (string, error) {
	c := *s
	if c.Server.OpenAIKey != "" {
		c.Server.OpenAIKey = "***"
	}
	b, err := yaml.Marshal(&c)
	if err != nil {
		return "", errors.Wrap(err, "encode settings")
	}
	return string(b), nil
}
