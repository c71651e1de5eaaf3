package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Mailer delivers outbound email. Delivery is best-effort: callers commit
// their own state first and treat a send failure as a logged event, never
// as a reason to roll back.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// Client sends email through a provider transmission API.
type Client struct {
	baseURL    string
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, fromEmail, fromName string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Send(ctx context.Context, to, subject, html, text string) error {
	transmission := map[string]interface{}{
		"recipients": []map[string]interface{}{
			{
				"address": map[string]string{
					"email": to,
				},
			},
		},
		"content": map[string]interface{}{
			"from": map[string]string{
				"email": c.fromEmail,
				"name":  c.fromName,
			},
			"subject": subject,
			"html":    html,
			"text":    text,
		},
	}

	body, err := json.Marshal(transmission)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transmissions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// LogMailer writes sends to the process log instead of delivering them.
// Used in development and tests when no mail provider is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _, _ string) error {
	log.Printf("INFO [mailer] email to %s: %s", to, subject)
	return nil
}
