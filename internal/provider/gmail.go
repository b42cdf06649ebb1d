package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"alfredmail-be/config"
	"alfredmail-be/internal/models"
)

// Gmail implements Provider against the Gmail REST API.
type Gmail struct {
	cfg     *config.Config
	session *Session
	api     gmailAPI

	// newAPI is swapped out in tests.
	newAPI func(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (gmailAPI, error)
}

func NewGmail(cfg *config.Config) *Gmail {
	return &Gmail{
		cfg:    cfg,
		newAPI: newGmailClient,
	}
}

func (g *Gmail) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.cfg.GoogleClientID,
		ClientSecret: g.cfg.GoogleClientSecret,
		RedirectURL:  g.cfg.FrontendURL,
		Scopes: []string{
			gmail.GmailReadonlyScope,
			gmail.GmailModifyScope,
			gmail.GmailSendScope,
			gmail.GmailComposeScope,
		},
		Endpoint: google.Endpoint,
	}
}

// Connect exchanges the authorization code for an access credential and
// opens the session. Missing client identifiers are a configuration
// problem, a failed or cancelled exchange an auth one.
func (g *Gmail) Connect(ctx context.Context, code string) (*Session, error) {
	if g.cfg.GoogleClientID == "" {
		return nil, &ConfigurationError{Reason: "Gmail client ID is missing, check GOOGLE_CLIENT_ID"}
	}
	if g.cfg.GoogleClientSecret == "" {
		return nil, &ConfigurationError{Reason: "Gmail client secret is missing, check GOOGLE_CLIENT_SECRET"}
	}

	conf := g.oauthConfig()
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, &AuthError{Reason: "failed to exchange code for token", Err: err}
	}

	api, err := g.newAPI(ctx, conf, token)
	if err != nil {
		return nil, &AuthError{Reason: "failed to initialize Gmail client", Err: err}
	}

	g.api = api
	g.session = &Session{
		Provider:  KindGmail,
		Token:     token,
		Connected: true,
	}

	// Best-effort: a missing profile just means "unknown user".
	if email, err := g.GetUserProfile(ctx); err == nil {
		g.session.Email = email
	} else {
		log.Printf("gmail: profile lookup failed: %v", err)
	}

	return g.session, nil
}

// Restore re-attaches a session loaded from the state store.
func (g *Gmail) Restore(s *Session) error {
	if s == nil || !s.Connected || s.Token == nil {
		return &AuthError{Reason: "no connected Gmail session"}
	}
	api, err := g.newAPI(context.Background(), g.oauthConfig(), s.Token)
	if err != nil {
		return &AuthError{Reason: "failed to initialize Gmail client", Err: err}
	}
	g.api = api
	g.session = s
	return nil
}

func (g *Gmail) connected() error {
	if g.session == nil || !g.session.Connected || g.api == nil {
		return &AuthError{Reason: "not connected to Gmail"}
	}
	return nil
}

// scanTier is one attempt in the escalating fallback search: a query,
// a page size, and the label filter applied client-side to its results.
type scanTier struct {
	name       string
	query      string
	maxResults int64
	filter     func(*models.NormalizedMessage) bool
}

// scanTiers builds the ordered fallback sequence. Tiers are tried in
// order and a later tier runs only when the previous one produced zero
// messages. The relaxed tiers intentionally accept mail that is merely
// not sent/draft/spam/trash, without confirming inbox membership; that
// matches long-standing behavior and may admit custom-label mail.
func (g *Gmail) scanTiers(settings models.ScanSettings) []scanTier {
	strict := (*models.NormalizedMessage).IsInboxMail
	relaxed := (*models.NormalizedMessage).IsNotExcluded
	max := int64(settings.MaxEmails)

	tiers := []scanTier{
		{name: "labeled", query: g.buildInboxQuery(settings), maxResults: max, filter: strict},
		{name: "in-inbox", query: "in:inbox order:newer", maxResults: max, filter: strict},
		// Superset fetch: no query at all, larger page, filter client-side.
		{name: "superset", query: "", maxResults: max * 3, filter: strict},
	}

	for _, q := range []string{"in:inbox", "label:INBOX", "category:primary", "is:inbox", "has:userlabels"} {
		tiers = append(tiers, scanTier{name: "relaxed " + q, query: q, maxResults: max, filter: relaxed})
	}
	return tiers
}

func (g *Gmail) buildInboxQuery(settings models.ScanSettings) string {
	query := "label:INBOX"

	if days := settings.TimeRangeDays(); days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		query += " after:" + cutoff.Format("2006/01/02")
	}
	if settings.Important {
		query += " is:important"
	}
	if settings.Unread {
		query += " is:unread"
	}

	query += " -label:SPAM -label:TRASH order:newer"
	return query
}

// ScanInbox walks the fallback tiers until one yields mail. Tier errors
// are logged and fall through; this is retry-on-empty-result, not
// retry-on-error. Whatever tier wins, nothing carrying SENT, DRAFT,
// SPAM or TRASH is ever returned.
func (g *Gmail) ScanInbox(ctx context.Context, settings models.ScanSettings) ([]models.NormalizedMessage, error) {
	if err := g.connected(); err != nil {
		return nil, err
	}
	if settings.MaxEmails <= 0 {
		settings.MaxEmails = g.cfg.ScanMaxEmails
	}

	for _, tier := range g.scanTiers(settings) {
		msgs, err := g.runTier(ctx, tier, settings.MaxEmails)
		if err != nil {
			log.Printf("gmail: scan tier %q: %v", tier.name, err)
			continue
		}
		if len(msgs) > 0 {
			return msgs, nil
		}
	}

	log.Printf("gmail: all scan tiers returned no messages")
	return []models.NormalizedMessage{}, nil
}

func (g *Gmail) runTier(ctx context.Context, tier scanTier, limit int) ([]models.NormalizedMessage, error) {
	resp, err := g.api.ListMessages(ctx, tier.query, tier.maxResults)
	if err != nil {
		return nil, &QueryError{Query: tier.query, Err: err}
	}
	if len(resp.Messages) == 0 {
		return nil, nil
	}

	msgs := g.fetchDetails(ctx, resp.Messages)

	filtered := make([]models.NormalizedMessage, 0, len(msgs))
	for i := range msgs {
		if tier.filter(&msgs[i]) {
			filtered = append(filtered, msgs[i])
		}
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// fetchDetails loads full message bodies concurrently. Individual
// failures drop the message rather than failing the tier.
func (g *Gmail) fetchDetails(ctx context.Context, refs []*gmail.Message) []models.NormalizedMessage {
	const maxConcurrency = 10
	sem := make(chan struct{}, maxConcurrency)

	results := make([]*models.NormalizedMessage, len(refs))
	done := make(chan int, len(refs))

	for i, ref := range refs {
		sem <- struct{}{}
		go func(idx int, id string) {
			defer func() { <-sem }()
			defer func() { done <- idx }()

			full, err := g.api.GetMessage(ctx, id)
			if err != nil {
				log.Printf("gmail: message %s fetch failed: %v", id, err)
				return
			}
			msg := mapGmailMessage(full)
			results[idx] = &msg
		}(i, ref.Id)
	}
	for range refs {
		<-done
	}

	msgs := make([]models.NormalizedMessage, 0, len(refs))
	for _, m := range results {
		if m != nil {
			msgs = append(msgs, *m)
		}
	}
	return msgs
}

func mapGmailMessage(msg *gmail.Message) models.NormalizedMessage {
	var sentAt time.Time
	if msg.InternalDate > 0 {
		sentAt = time.Unix(msg.InternalDate/1000, (msg.InternalDate%1000)*1000000)
	}

	headers := map[string]string{}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			headers[strings.ToLower(h.Name)] = strings.ToValidUTF8(h.Value, "")
		}
	}
	if d, err := mail.ParseDate(headers["date"]); err == nil {
		sentAt = d
	}

	return models.NormalizedMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Labels:   msg.LabelIds,
		Snippet:  strings.ToValidUTF8(msg.Snippet, ""),
		SentAt:   sentAt,
		Headers:  headers,
		Payload:  mapPayload(msg.Payload),
	}
}

func mapPayload(part *gmail.MessagePart) *models.MessagePart {
	if part == nil {
		return nil
	}
	out := &models.MessagePart{MimeType: part.MimeType}
	if part.Body != nil && part.Body.Data != "" {
		out.Body = decodeBody(part.Body.Data)
	}
	for _, p := range part.Parts {
		out.Parts = append(out.Parts, mapPayload(p))
	}
	return out
}

func decodeBody(data string) string {
	// RawURLEncoding first (no padding), then padded URLEncoding.
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return strings.ToValidUTF8(string(decoded), "")
	}
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return strings.ToValidUTF8(string(decoded), "")
	}
	return data
}

// CreateDraftReply builds the raw RFC-822 message, encodes it, and
// stores a draft. A provider rejection or a response without a draft ID
// comes back as *DraftError.
func (g *Gmail) CreateDraftReply(ctx context.Context, req DraftRequest) (*models.DraftResult, error) {
	if err := g.connected(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, &DraftError{Reason: "email content is required"}
	}

	msg := &gmail.Message{Raw: encodeRaw(buildRawMessage(req))}
	if req.ThreadID != "" {
		msg.ThreadId = req.ThreadID
	}

	draft, err := g.api.CreateDraft(ctx, msg)
	if err != nil {
		return nil, &DraftError{Reason: "provider rejected the draft", Err: err}
	}
	if draft == nil || draft.Id == "" {
		return nil, &DraftError{Reason: "no draft ID returned"}
	}

	result := &models.DraftResult{
		DraftID: draft.Id,
		Status:  "created",
	}
	if draft.Message != nil {
		result.ThreadID = draft.Message.ThreadId
	}
	return result, nil
}

// SendMessage sends immediately instead of drafting.
func (g *Gmail) SendMessage(ctx context.Context, req DraftRequest) error {
	if err := g.connected(); err != nil {
		return err
	}

	msg := &gmail.Message{Raw: encodeRaw(buildRawMessage(req))}
	if req.ThreadID != "" {
		msg.ThreadId = req.ThreadID
	}
	if _, err := g.api.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("messages.Send failed: %w", err)
	}
	return nil
}

// Disconnect revokes the token best-effort and clears the session no
// matter what.
func (g *Gmail) Disconnect(ctx context.Context) error {
	if g.api != nil {
		if err := g.api.RevokeToken(ctx); err != nil {
			log.Printf("gmail: token revoke failed (continuing): %v", err)
		}
	}
	g.api = nil
	g.session = nil
	return nil
}

// GetUserProfile returns the connected account's email address.
func (g *Gmail) GetUserProfile(ctx context.Context) (string, error) {
	if err := g.connected(); err != nil {
		return "", err
	}
	profile, err := g.api.GetProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("users.GetProfile failed: %w", err)
	}
	return profile.EmailAddress, nil
}
