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
		boolFlags    []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-d", "updates.db", "-g", "http://x"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d", "updates.db"},
		},
		{
			name:         "equals form",
			args:         []string{"-i=45", "-d", "x.db"},
			allowedFlags: []string{"-i"},
			want:         []string{"-i=45"},
		},
		{
			name:         "unknown flags and positionals ignored",
			args:         []string{"-x", "1", "positional", "--y=2"},
			allowedFlags: []string{"-d"},
			want:         []string{},
		},
		{
			name:         "flag at the end without value",
			args:         []string{"-d"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-d", "-i", "10"},
			allowedFlags: []string{"-d", "-i"},
			want:         []string{"-d", "-i", "10"},
		},
		{
			name:         "bool flag does not swallow the next argument",
			args:         []string{"-r", "positional", "-d", "a.db"},
			allowedFlags: []string{"-d"},
			boolFlags:    []string{"-r"},
			want:         []string{"-r", "-d", "a.db"},
		},
		{
			name:         "repeated flag keeps order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:         "empty",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags, tt.boolFlags...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFileFrom(t *testing.T) {
	assert.Equal(t, "/etc/a.json", ConfigFileFrom([]string{"-c", "/etc/a.json"}))
	assert.Equal(t, "/etc/b.json", ConfigFileFrom([]string{"-config", "/etc/b.json", "-d", "x.db"}))
	assert.Equal(t, "/etc/2.json", ConfigFileFrom([]string{"-c", "/etc/1.json", "-config", "/etc/2.json"}))
	assert.Empty(t, ConfigFileFrom([]string{"-d", "x.db"}))
}

func TestJsonConfigFlags_ReadsProcessArgs(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"testbin", "-c", "/path/conf.json"}
	assert.Equal(t, "/path/conf.json", JsonConfigFlags())
}
