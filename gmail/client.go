package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	user         = "me"
	redirectAddr = ":8081"
)

// Client wraps gmail.Service with the operations the bot needs.
type Client struct {
	svc *gmail.Service
	now func() time.Time
}

// NewClientFromCredentials creates Client using OAuth credentials file and token path.
func NewClientFromCredentials(ctx context.Context, credsPath, tokenPath string) (*Client, error) {
	b, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("read creds: %w", err)
	}
	config, err := google.ConfigFromJSON(b, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// redirect URI must match your OAuth client (desktop/web)
	config.RedirectURL = "http://localhost" + redirectAddr + "/"

	client, err := getClient(ctx, config, tokenPath)
	if err != nil {
		return nil, fmt.Errorf("oauth client: %w", err)
	}
	return NewClient(ctx, option.WithHTTPClient(client))
}

// NewClient builds a Client from raw service options.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new gmail service: %w", err)
	}
	return &Client{svc: svc, now: time.Now}, nil
}

// ListMessages returns up to max summaries for label, most recent first.
func (c *Client) ListMessages(ctx context.Context, label string, max int64) ([]Summary, error) {
	resp, err := c.svc.Users.Messages.List(user).LabelIds(label).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	summaries := make([]Summary, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		s, err := c.fetchSummary(ctx, m.Id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (c *Client) fetchSummary(ctx context.Context, id string) (Summary, error) {
	m, err := c.svc.Users.Messages.Get(user, id).
		Format("metadata").
		MetadataHeaders("From", "To", "Subject").
		Context(ctx).
		Do()
	if err != nil {
		return Summary{}, fmt.Errorf("get message %s: %w", id, err)
	}
	s := Summary{ID: id, Snippet: m.Snippet, Received: c.received(m.InternalDate)}
	if m.Payload != nil {
		for _, h := range m.Payload.Headers {
			switch h.Name {
			case "From":
				s.From = h.Value
			case "To":
				s.To = h.Value
			case "Subject":
				s.Subject = h.Value
			}
		}
	}
	return s, nil
}

func (c *Client) received(internalDate int64) time.Time {
	if internalDate <= 0 {
		return c.now().UTC()
	}
	return time.UnixMilli(internalDate).UTC()
}

// GetMessage fetches the full payload of a message as a decoded Part tree.
func (c *Client) GetMessage(ctx context.Context, id string) (*Part, error) {
	m, err := c.svc.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	if m.Payload == nil {
		return &Part{}, nil
	}
	return convertPart(m.Payload)
}

func convertPart(mp *gmail.MessagePart) (*Part, error) {
	p := &Part{MimeType: mp.MimeType}
	if mp.Body != nil && mp.Body.Data != "" {
		data, err := decodeBody(mp.Body.Data)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", mp.PartId, err)
		}
		p.Data = data
	}
	for _, child := range mp.Parts {
		cp, err := convertPart(child)
		if err != nil {
			return nil, err
		}
		p.Parts = append(p.Parts, cp)
	}
	return p, nil
}

// decodeBody decodes base64url body data, with or without padding.
// Gmail may give standard base64, try that last.
func decodeBody(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return b, nil
}

// SendMessage sends a plain text message from the authorized account.
func (c *Client) SendMessage(ctx context.Context, to, subject, body string) error {
	raw, err := BuildRaw(to, subject, body, c.now())
	if err != nil {
		return err
	}
	_, err = c.svc.Users.Messages.Send(user, &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
