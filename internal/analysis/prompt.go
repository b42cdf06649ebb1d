package analysis

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"alfredmail-be/internal/models"
	"alfredmail-be/internal/utils"
)

// Prompt is the system/user instruction pair sent to the completion
// service.
type Prompt struct {
	System string
	User   string
}

// maxSnippetLen bounds how much of each message body reaches the
// prompt, keeping token usage predictable.
const maxSnippetLen = 200

// Transformer chain for prompt-safe text: canonical composition plus
// removal of invisible format characters.
var promptCleaner = transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cf)))

func cleanSnippet(s string) string {
	s = utils.SanitizeHTML(s)
	if cleaned, _, err := transform.String(promptCleaner, s); err == nil {
		s = cleaned
	}
	s = strings.ToValidUTF8(s, "")
	return utils.TruncateRunes(s, maxSnippetLen)
}

// BuildPrompt renders the bounded message list into the instruction
// pair for the selected AI mode.
func BuildPrompt(msgs []models.NormalizedMessage, settings models.ScanSettings) Prompt {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		snippet := cleanSnippet(m.Snippet)
		if snippet == "" {
			snippet = "No Content"
		}
		fmt.Fprintf(&sb, "Email %d:\nFrom: %s\nSubject: %s\nDate: %s\nContent: %s",
			i+1, m.From(), m.Subject(), m.SentAt.Format("2006-01-02 15:04"), snippet)
	}
	digest := sb.String()

	if settings.AIMode == models.AIModeAllInOne {
		return Prompt{
			System: allInOneSystem,
			User:   fmt.Sprintf(allInOneUserTemplate, len(msgs), digest, len(msgs)),
		}
	}
	return Prompt{
		System: summarySystem,
		User:   fmt.Sprintf(summaryUserTemplate, len(msgs), digest, len(msgs)),
	}
}

// SelectModel picks a model tier from the estimated input size: small
// prompts use the cheap tier, large ones the capable tier, everything
// in between the caller's preference. Rough estimate: four characters
// per token.
func SelectModel(promptLen int, preferred, cheap, capable string) string {
	tokens := (promptLen + 3) / 4
	switch {
	case tokens < 1000:
		return cheap
	case tokens > 3000:
		return capable
	}
	return preferred
}

const summarySystem = `You are Alfred, an AI Executive Assistant specializing in email intelligence and productivity. Your role is to analyze inbox emails, identify priorities, and provide actionable insights. Think like a professional executive assistant who understands business context and urgency. IMPORTANT: You must respond with ONLY valid JSON. Do not include any markdown formatting, explanations, or text outside the JSON structure.`

const summaryUserTemplate = `Please analyze the following %d inbox emails with executive-level insight:

%s

IMPORTANT: Respond with ONLY valid JSON. No markdown, no explanations, just pure JSON.

{
  "summary": "Executive summary of inbox status",
  "totalEmails": %d,
  "emailSummaries": [
    {
      "emailNumber": 1,
      "from": "Sender",
      "subject": "Subject",
      "summary": "Key points and context",
      "importance": "high",
      "keyPoints": ["Key point 1", "Key point 2"],
      "actionRequired": "Specific action needed",
      "urgency": "urgent"
    }
  ],
  "overallInsights": "Strategic insights and recommendations",
  "priorityActions": ["Action 1", "Action 2"],
  "timeSensitiveItems": ["Urgent item 1", "Urgent item 2"]
}`

const allInOneSystem = `You are Alfred, an AI Executive Assistant who not only analyzes emails but also takes action. You understand context, generate professional responses, and help manage email workflow. Generate responses that are business-appropriate, professional, and actionable. Focus on emails that genuinely need replies and create responses that add value. IMPORTANT: You must respond with ONLY valid JSON. Do not include any markdown formatting, explanations, or text outside the JSON structure.`

const allInOneUserTemplate = `Please analyze the following %d inbox emails and act as an AI Executive Assistant:

%s

IMPORTANT: Respond with ONLY valid JSON. No markdown, no explanations, just pure JSON.

{
  "summary": "Executive summary with action items",
  "totalEmails": %d,
  "emailsAnalysis": [
    {
      "emailNumber": 1,
      "from": "Sender",
      "subject": "Subject",
      "summary": "Key points and context",
      "needsReply": true,
      "replyReason": "Why this email needs a response",
      "importance": "high",
      "urgency": "urgent",
      "keyPoints": ["Key point 1", "Key point 2"],
      "businessContext": "Business context and implications"
    }
  ],
  "repliesToGenerate": [
    {
      "emailNumber": 1,
      "to": "Recipient email",
      "subject": "Re: Original Subject",
      "content": "Professional, actionable response content that addresses the email purpose and adds value. Keep it concise but comprehensive.",
      "tone": "professional",
      "priority": "high",
      "actionItems": ["Action item 1", "Action item 2"],
      "followUp": "Suggested follow-up actions"
    }
  ],
  "overallInsights": "Strategic insights and workflow recommendations",
  "replySummary": "Reply summary: Drafts generated for X emails requiring responses",
  "productivityMetrics": {
    "emailsNeedingAction": "X emails require immediate attention",
    "estimatedTimeSaved": "Estimated time saved with AI assistance",
    "priorityDistribution": "High/Medium/Low priority breakdown"
  }
}`
