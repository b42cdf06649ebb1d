package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUserID = "me"

// gmailAPI is the slice of the Gmail REST surface the adapter needs.
// Narrowed out so scans and drafts can be exercised against a fake.
type gmailAPI interface {
	ListMessages(ctx context.Context, query string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
	CreateDraft(ctx context.Context, msg *gmail.Message) (*gmail.Draft, error)
	SendMessage(ctx context.Context, msg *gmail.Message) (*gmail.Message, error)
	GetProfile(ctx context.Context) (*gmail.Profile, error)
	RevokeToken(ctx context.Context) error
}

type gmailClient struct {
	svc   *gmail.Service
	token *oauth2.Token
}

func newGmailClient(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (gmailAPI, error) {
	src := cfg.TokenSource(ctx, token)
	svc, err := gmail.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}
	return &gmailClient{svc: svc, token: token}, nil
}

func (c *gmailClient) ListMessages(ctx context.Context, query string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	call := c.svc.Users.Messages.List(gmailUserID).MaxResults(maxResults).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}
	return call.Do()
}

func (c *gmailClient) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	return c.svc.Users.Messages.Get(gmailUserID, id).Format("full").Context(ctx).Do()
}

func (c *gmailClient) CreateDraft(ctx context.Context, msg *gmail.Message) (*gmail.Draft, error) {
	draft := &gmail.Draft{Message: msg}
	return c.svc.Users.Drafts.Create(gmailUserID, draft).Context(ctx).Do()
}

func (c *gmailClient) SendMessage(ctx context.Context, msg *gmail.Message) (*gmail.Message, error) {
	return c.svc.Users.Messages.Send(gmailUserID, msg).Context(ctx).Do()
}

func (c *gmailClient) GetProfile(ctx context.Context) (*gmail.Profile, error) {
	return c.svc.Users.GetProfile(gmailUserID).Context(ctx).Do()
}

// RevokeToken invalidates the access token with Google's revocation
// endpoint. Callers treat failures as non-fatal.
func (c *gmailClient) RevokeToken(ctx context.Context) error {
	if c.token == nil || c.token.AccessToken == "" {
		return nil
	}
	form := url.Values{"token": {c.token.AccessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://oauth2.googleapis.com/revoke", nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = form.Encode()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke endpoint returned %s", resp.Status)
	}
	return nil
}
