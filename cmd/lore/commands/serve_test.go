package commands

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runServe needs a content repository before it ever binds a port.
func TestServeCommand_OutsideRepository(t *testing.T) {
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(orig)

	serveAddr = ""
	serveDebug = false
	rootCmd.SetArgs([]string{"serve"})
	err = rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not inside a content repository")
}
