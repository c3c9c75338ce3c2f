package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "flag without value before another flag",
			args:         []string{"-c", "-a", "x"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "nothing allowed",
			args:         []string{"-mode", "remote"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "several allowed flags keep order",
			args:         []string{"-mode", "local", "-x", "1", "-a=host:1"},
			allowedFlags: []string{"-mode", "-a"},
			want:         []string{"-mode", "local", "-a=host:1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFileFlag([]string{"-c", "a.json", "-a", "h:1"}))
	assert.Equal(t, "b.json", ConfigFileFlag([]string{"-config=b.json"}))
	assert.Equal(t, "", ConfigFileFlag([]string{"-a", "h:1"}))
}

func TestJsonConfigFlags_UsesOSArgs(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-c", "campus.json"}
	assert.Equal(t, "campus.json", JsonConfigFlags())
}
