package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/config"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare JSON untouched", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"anonymous fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n  ", `{"a":1}`},
		{"prose untouched", "no fences here", "no fences here"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestNew_EnabledTracksAPIKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.OpenAI.Model = "gpt-4o-mini"
	assert.False(t, New(cfg, zap.NewNop()).Enabled())

	cfg.OpenAI.APIKey = "sk-test"
	assert.True(t, New(cfg, zap.NewNop()).Enabled())
}
