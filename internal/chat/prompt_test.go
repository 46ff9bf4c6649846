package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mentor-backend/internal/fields"
)

func TestAssemblePromptWithField(t *testing.T) {
	prompt := AssemblePrompt(fields.SoftwareDevelopment)

	assert.Contains(t, prompt, "You are MiniMentor")
	assert.Contains(t, prompt, "interested in the software development field")
	assert.Contains(t, prompt, "without explicitly mentioning that you know their field")
	assert.NotContains(t, prompt, "Try to identify the user's field")
}

func TestAssemblePromptWithoutField(t *testing.T) {
	prompt := AssemblePrompt(fields.Unknown)

	assert.Contains(t, prompt, "Try to identify the user's field or interests from the conversation")
	assert.NotContains(t, prompt, "Tailor your advice specifically to this field")
}

func TestAssemblePromptConventions(t *testing.T) {
	prompt := AssemblePrompt(fields.Design)

	// The markdown plan format and both side-channel directive
	// conventions are part of every directive.
	assert.Contains(t, prompt, `"## Action Steps"`)
	assert.Contains(t, prompt, `"## Recommended Resources"`)
	assert.Contains(t, prompt, "VISUAL:")
	assert.Contains(t, prompt, "AUDIO: true")
}

func TestAssemblePromptDeterministic(t *testing.T) {
	assert.Equal(t, AssemblePrompt(fields.Finance), AssemblePrompt(fields.Finance))
	assert.Equal(t, AssemblePrompt(fields.Unknown), AssemblePrompt(fields.Unknown))
}
