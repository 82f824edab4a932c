package server_test

import (
	"testing"

	"translation-manager/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfigZeroValues(t *testing.T) {
	// Defaults are applied by the config loader via struct tags; a bare
	// Config carries zero values.
	c := server.Config{}
	assert.Empty(t, c.Port)
	assert.Empty(t, c.ApiKey)
}
