package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

func TestToContents_RolesMapped(t *testing.T) {
	contents := toContents([]commonModels.Message{
		commonModels.UserMessage("hi"),
		commonModels.AssistantMessage("hello"),
	})

	assert.Len(t, contents, 2)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "hello", contents[1].Parts[0].Text)
}
