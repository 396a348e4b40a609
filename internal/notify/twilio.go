package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioGateway sends WhatsApp messages through Twilio's Messages REST
// endpoint. The API is a single form POST, so this is a thin net/http client
// rather than a full SDK dependency.
type TwilioGateway struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

func NewTwilioGateway(accountSID, authToken, from string, timeout time.Duration) *TwilioGateway {
	return &TwilioGateway{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    "https://api.twilio.com",
		client:     &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the gateway at a different host; used by tests.
func (g *TwilioGateway) WithBaseURL(base string) *TwilioGateway {
	g.baseURL = base
	return g
}

func (g *TwilioGateway) Send(ctx context.Context, address, text string) error {
	form := url.Values{
		"From": {g.from},
		"To":   {address},
		"Body": {text},
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.baseURL, g.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio returned %d", resp.StatusCode)
	}
	return nil
}
