package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	clientFlags := []string{"-a", "-t", "-i", "-d", "-l", "-v"}
	configFlags := []string{"-c", "-config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"config flags are dropped", []string{"-c", "conf.json", "-a", "http://localhost:8080"}, clientFlags,
			[]string{"-a", "http://localhost:8080"}},
		{"client flags are dropped", []string{"-c", "conf.json", "-a", "http://localhost:8080"}, configFlags,
			[]string{"-c", "conf.json"}},
		{"equals form", []string{"-config=alt.json", "-l=fr"}, configFlags, []string{"-config=alt.json"}},
		{"order is kept", []string{"-v", "debug", "-l", "ar", "-t", "5"}, clientFlags,
			[]string{"-v", "debug", "-l", "ar", "-t", "5"}},
		{"repeated flag is kept", []string{"-l", "fr", "-l", "ar"}, clientFlags, []string{"-l", "fr", "-l", "ar"}},
		{"dangling flag", []string{"-d"}, clientFlags, []string{"-d"}},
		{"next flag is not a value", []string{"-c", "-l", "fr"}, configFlags, []string{"-c"}},
		{"dash value needs equals form", []string{"-config=-odd.json"}, configFlags, []string{"-config=-odd.json"}},
		{"positionals ignored", []string{"extra", "-x", "1"}, clientFlags, []string{}},
		{"empty", nil, clientFlags, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", ConfigFile())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", ConfigFile())
	})

	t.Run("last flag wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", ConfigFile())
	})

	t.Run("falls back to environment", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "/etc/madrasati.json")
		os.Args = []string{"testbin", "-a", "https://example.org"}
		assert.Equal(t, "/etc/madrasati.json", ConfigFile())
	})

	t.Run("flag beats environment", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "/etc/madrasati.json")
		os.Args = []string{"testbin", "-c", "local.json"}
		assert.Equal(t, "local.json", ConfigFile())
	})

	t.Run("nothing given", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")
		os.Args = []string{"testbin", "-x", "1"}
		assert.Empty(t, ConfigFile())
	})
}
