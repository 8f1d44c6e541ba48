package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nexocrm/nexo/pkg/models"
)

var ErrProviderUnavailable = errors.New("whatsapp provider unavailable")

// Client talks to the WhatsApp Business Cloud API.
type Client struct {
	client *resty.Client
}

// NewClient creates a Client against baseURL (the Graph API root).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

type sendRequest struct {
	MessagingProduct string        `json:"messaging_product"`
	RecipientType    string        `json:"recipient_type"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Text             *textBody     `json:"text,omitempty"`
	Template         *templateBody `json:"template,omitempty"`
}

type textBody struct {
	Body string `json:"body"`
}

type templateBody struct {
	Name     string       `json:"name"`
	Language templateLang `json:"language"`
}

type templateLang struct {
	Code string `json:"code"`
}

// SendResponse is the provider's acknowledgment of an outbound message.
type SendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText delivers a text message through the configured phone number.
func (c *Client) SendText(ctx context.Context, settings *models.WhatsAppSettings, to, body string) (*SendResponse, error) {
	return c.send(ctx, settings, &sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: body},
	})
}

// SendTemplate delivers a pre-approved template message.
func (c *Client) SendTemplate(ctx context.Context, settings *models.WhatsAppSettings, to, name, langCode string) (*SendResponse, error) {
	return c.send(ctx, settings, &sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "template",
		Template:         &templateBody{Name: name, Language: templateLang{Code: langCode}},
	})
}

func (c *Client) send(ctx context.Context, settings *models.WhatsAppSettings, req *sendRequest) (*SendResponse, error) {
	var out SendResponse
	var apiErr apiError

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(settings.AccessToken).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/%s/messages", settings.APIVersion, settings.PhoneNumberID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("whatsapp send failed (%d): %s", resp.StatusCode(), apiErr.Error.Message)
	}
	if len(out.Messages) == 0 {
		return nil, fmt.Errorf("whatsapp send: empty response")
	}
	return &out, nil
}
