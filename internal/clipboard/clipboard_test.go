package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"SSH_TTY", "SSH_CONNECTION", "TMUX", "STY"} {
		t.Setenv(key, "")
	}
}

func TestShouldUseOSC52(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected bool
	}{
		{name: "local terminal", expected: false},
		{name: "SSH_TTY set", envVars: map[string]string{"SSH_TTY": "/dev/pts/0"}, expected: true},
		{name: "SSH_CONNECTION set", envVars: map[string]string{"SSH_CONNECTION": "192.168.1.1 12345 192.168.1.2 22"}, expected: true},
		{name: "TMUX set", envVars: map[string]string{"TMUX": "/tmp/tmux-1000/default,12345,0"}, expected: true},
		{name: "STY set (GNU screen)", envVars: map[string]string{"STY": "12345.pts-0.hostname"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			require.Equal(t, tt.expected, shouldUseOSC52())
		})
	}
}

func TestSystem_WriteOSC52(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("a\tb\r\n"))

	t.Run("direct", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SSH_TTY", "/dev/pts/0")
		var buf bytes.Buffer
		require.NoError(t, System{Terminal: &buf}.writeOSC52("a\tb\r\n"))
		require.Contains(t, buf.String(), "\x1b]52;c;"+encoded)
	})

	t.Run("tmux passthrough", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TMUX", "/tmp/tmux")
		var buf bytes.Buffer
		require.NoError(t, System{Terminal: &buf}.writeOSC52("a\tb\r\n"))
		require.Contains(t, buf.String(), "\x1bPtmux;")
		require.Contains(t, buf.String(), encoded)
	})
}

func TestMemory_ReadWrite(t *testing.T) {
	m := NewMemory("seed")

	text, err := m.ReadText()
	require.NoError(t, err)
	require.Equal(t, "seed", text)

	require.NoError(t, m.WriteText("x\ty\r\n"))
	require.Equal(t, "x\ty\r\n", m.Text())
	require.Equal(t, 1, m.Reads())
	require.Equal(t, 1, m.Writes())
}

func TestMemory_Errors(t *testing.T) {
	m := NewMemory("keep")
	m.ReadErr = errors.New("denied")
	m.WriteErr = errors.New("full")

	_, err := m.ReadText()
	require.EqualError(t, err, "denied")
	require.EqualError(t, m.WriteText("new"), "full")
	require.Equal(t, "keep", m.Text())
}
