package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandResult_Success(t *testing.T) {
	t.Parallel()

	assert.True(t, CommandResult{ExitCode: 0, Stdout: "output"}.Success())
	assert.False(t, CommandResult{ExitCode: 2, Stderr: "NMAKE : fatal error U1077"}.Success())
}

func TestCommandCall_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call CommandCall
		want string
	}{
		{"no args", CommandCall{Command: "nmake"}, "nmake"},
		{"with args", CommandCall{Command: "tar", Args: []string{"xf", "zlib-1.2.8.tar.gz"}}, "tar xf zlib-1.2.8.tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.call.String())
		})
	}
}
