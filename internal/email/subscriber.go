package email

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MailgunSubscriber adds members to a Mailgun mailing list over its REST API
type MailgunSubscriber struct {
	client      *http.Client
	apiBase     string
	apiKey      string
	listAddress string
}

func NewMailgunSubscriber(apiBase, apiKey, listAddress string) *MailgunSubscriber {
	return &MailgunSubscriber{
		client:      &http.Client{Timeout: 10 * time.Second},
		apiBase:     apiBase,
		apiKey:      apiKey,
		listAddress: listAddress,
	}
}

// Subscribe adds the member to the configured list. Runs only as a detached
// side effect after verification, so errors are reported, not retried.
func (s *MailgunSubscriber) Subscribe(ctx context.Context, name, address string) error {
	endpoint := fmt.Sprintf("%s/lists/%s/members", s.apiBase, url.PathEscape(s.listAddress))

	form := url.Values{}
	form.Set("address", address)
	form.Set("name", name)
	form.Set("subscribed", "yes")
	form.Set("upsert", "yes")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build subscribe request: %w", err)
	}
	req.SetBasicAuth("api", s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("subscribe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("subscribe request: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// NoopSubscriber is used when no mailing list is configured
type NoopSubscriber struct{}

func (NoopSubscriber) Subscribe(ctx context.Context, name, address string) error {
	return nil
}
