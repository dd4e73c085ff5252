package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"remindbot/internal/core/domain/reminder"
	"strings"
	"time"
)

// TwilioNotifier delivers WhatsApp messages through the Twilio Messages API.
type TwilioNotifier struct {
	httpClient http.Client
	baseURL    url.URL
	accountSID string
	authToken  string
	from       string
}

func New(
	baseURL url.URL,
	accountSID string,
	authToken string,
	from string,
	timeout time.Duration,
) *TwilioNotifier {
	return &TwilioNotifier{
		httpClient: http.Client{Timeout: timeout},
		baseURL:    baseURL,
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
	}
}

func (n *TwilioNotifier) Send(ctx context.Context, to reminder.Owner, text string) error {
	endpoint := n.baseURL.JoinPath("2010-04-01", "Accounts", n.accountSID, "Messages.json")
	form := url.Values{}
	form.Set("From", whatsappAddress(n.from))
	form.Set("To", whatsappAddress(string(to)))
	form.Set("Body", text)

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint.String(),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return err
	}
	request.Header.Add("content-type", "application/x-www-form-urlencoded")
	request.SetBasicAuth(n.accountSID, n.authToken)

	resp, err := n.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("got unsuccessful response from Twilio: %s", string(body))
	}
	return nil
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
