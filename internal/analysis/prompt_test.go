package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredmail-be/internal/models"
)

func TestBuildPromptModes(t *testing.T) {
	msgs := testMessages(2)
	settings := models.DefaultScanSettings()

	p := BuildPrompt(msgs, settings)
	assert.Contains(t, p.System, "email intelligence")
	assert.Contains(t, p.User, "Email 1:")
	assert.Contains(t, p.User, "Email 2:")
	assert.Contains(t, p.User, `"emailSummaries"`)
	assert.NotContains(t, p.User, `"repliesToGenerate"`)

	settings.AIMode = models.AIModeAllInOne
	p = BuildPrompt(msgs, settings)
	assert.Contains(t, p.User, `"repliesToGenerate"`)
	assert.Contains(t, p.User, `"productivityMetrics"`)
}

func TestBuildPromptTruncatesSnippets(t *testing.T) {
	msgs := testMessages(1)
	msgs[0].Snippet = strings.Repeat("a", 500)

	p := BuildPrompt(msgs, models.DefaultScanSettings())
	assert.Contains(t, p.User, strings.Repeat("a", maxSnippetLen)+"...")
	assert.NotContains(t, p.User, strings.Repeat("a", maxSnippetLen+1))
}

func TestBuildPromptSanitizesSnippets(t *testing.T) {
	msgs := testMessages(1)
	msgs[0].Snippet = `<p>Meeting at <b>3pm</b></p><script>alert(1)</script>`

	p := BuildPrompt(msgs, models.DefaultScanSettings())
	assert.Contains(t, p.User, "Meeting at 3pm")
	assert.NotContains(t, p.User, "<script>")
	assert.NotContains(t, p.User, "alert(1)")
}

func TestBuildPromptMissingHeaders(t *testing.T) {
	msgs := []models.NormalizedMessage{{ID: "m1", Headers: map[string]string{}}}

	p := BuildPrompt(msgs, models.DefaultScanSettings())
	assert.Contains(t, p.User, "From: Unknown")
	assert.Contains(t, p.User, "Subject: No Subject")
	assert.Contains(t, p.User, "Content: No Content")
}

func TestSelectModel(t *testing.T) {
	const preferred, cheap, capable = "gpt-4o-mini", "gpt-3.5-turbo", "gpt-4o-mini"

	// Under 1000 estimated tokens: cheap tier.
	assert.Equal(t, cheap, SelectModel(100, preferred, cheap, capable))
	// Over 3000 estimated tokens: capable tier.
	assert.Equal(t, capable, SelectModel(20000, preferred, cheap, capable))
	// In between: caller's preference.
	assert.Equal(t, preferred, SelectModel(8000, preferred, cheap, capable))
}
