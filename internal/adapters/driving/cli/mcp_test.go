package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("port"))
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("http"))
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("warmup"))
}

func TestMCPServeCmd_RequiresIndexService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	indexService = nil

	_, err := execute(t, "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index service not configured")
}
