package server_test

import (
	"testing"

	"heritage/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidMode(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want bool
	}{
		{"Production", server.ModeProduction, true},
		{"Development", server.ModeDevelopment, true},
		{"Invalid", "staging", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{Mode: tt.mode}
			assert.Equal(t, tt.want, c.IsValidMode())
		})
	}
}

func TestConfig_ServeDocs(t *testing.T) {
	assert.True(t, server.Config{Mode: server.ModeDevelopment}.ServeDocs())
	assert.False(t, server.Config{Mode: server.ModeProduction}.ServeDocs())
}
