package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	s := FromViper(v)

	require.Equal(t, DefaultAPIURL, s.APIURL)
	require.Equal(t, "file", s.Store)
	require.Equal(t, DefaultTimeout, s.Timeout)
	require.Equal(t, DefaultServerAddr, s.Server.Addr)
	require.Equal(t, []string{"*"}, s.Server.CORSOrigins)
}

func TestFromViper_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api-url: https://chat.example.com
store: sqlite
timeout: 5s
openai-api-key: sk-secret
cors-origins:
  - http://localhost:5173
`), 0o600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	s := FromViper(v)

	require.Equal(t, "https://chat.example.com", s.APIURL)
	require.Equal(t, "sqlite", s.Store)
	require.Equal(t, 5*time.Second, s.Timeout)
	require.Equal(t, []string{"http://localhost:5173"}, s.Server.CORSOrigins)

	out, err := s.YAML()
	require.NoError(t, err)
	require.NotContains(t, out, "sk-secret")

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "https://chat.example.com", decoded["api-url"])
	// the original is untouched by masking
	require.Equal(t, "sk-secret", s.Server.OpenAIKey)
}
