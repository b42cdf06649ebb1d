// Package drafts turns a report's reply suggestions into provider
// drafts, matching each suggestion back to its source message.
package drafts

import (
	"context"
	"log"

	"alfredmail-be/internal/models"
	"alfredmail-be/internal/provider"
)

// Fallbacks used when a suggestion cannot be matched to any scanned
// message and carries no usable fields of its own.
const (
	placeholderRecipient = "unknown@example.com"
	placeholderSubject   = "Draft Email"
	placeholderContent   = "No content provided"
)

// CreateDrafts drives per-item draft creation. Replies are processed
// sequentially so a provider-side rate limit on one draft does not
// cascade across many in-flight requests, and each item is isolated: a
// failure is recorded and the batch moves on. The result list always
// has one entry per suggestion, in order.
func CreateDrafts(ctx context.Context, p provider.Provider, replies []models.ReplySuggestion, msgs []models.NormalizedMessage) []models.DraftResult {
	results := make([]models.DraftResult, 0, len(replies))

	for i := range replies {
		reply := replies[i]
		original := matchOriginal(&reply, msgs)

		req := provider.DraftRequest{
			To:      reply.To,
			Subject: reply.Subject,
			Content: reply.Content,
		}
		if req.Content == "" {
			req.Content = placeholderContent
		}

		var originalID string
		if original != nil {
			originalID = original.ID
			req.ThreadID = original.ThreadID
			req.MessageID = original.ID
			if req.To == "" {
				req.To = original.From()
			}
			if req.Subject == "" {
				req.Subject = "Re: " + original.Subject()
			}
		} else {
			log.Printf("drafts: no original message matched reply %d, using placeholders", i+1)
			if req.To == "" {
				req.To = placeholderRecipient
			}
			if req.Subject == "" {
				req.Subject = placeholderSubject
			}
		}

		created, err := p.CreateDraftReply(ctx, req)
		if err != nil {
			log.Printf("drafts: creating draft %d failed: %v", i+1, err)
			results = append(results, models.DraftResult{
				Error:           err.Error(),
				ReplyData:       &reply,
				OriginalMessage: originalID,
			})
			continue
		}

		created.ReplyData = &reply
		created.OriginalMessage = originalID
		results = append(results, *created)
	}

	return results
}

// matchOriginal resolves a suggestion's source message with ordered
// fallbacks: declared ordinal, then exact subject, then exact sender.
func matchOriginal(reply *models.ReplySuggestion, msgs []models.NormalizedMessage) *models.NormalizedMessage {
	if reply.EmailNumber >= 1 && reply.EmailNumber <= len(msgs) {
		return &msgs[reply.EmailNumber-1]
	}
	if reply.Subject != "" {
		for i := range msgs {
			if msgs[i].Header("subject") == reply.Subject {
				return &msgs[i]
			}
		}
	}
	if reply.To != "" {
		for i := range msgs {
			if msgs[i].Header("from") == reply.To {
				return &msgs[i]
			}
		}
	}
	return nil
}
