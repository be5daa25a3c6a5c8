// Package wasender sends outbound WhatsApp messages through the WaSender
// HTTP API. Delivery is best effort: every failure mode is logged and
// reported as a boolean so callers never have to unwind on a send error.
package wasender

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/logging"
)

// DefaultTimeout bounds a single send attempt.
const DefaultTimeout = 20 * time.Second

// Kind selects the message payload shape.
type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// payload is the WaSender send-message request body. Exactly one media URL
// field is set for media kinds; text doubles as the caption.
type payload struct {
	To          string `json:"to"`
	Text        string `json:"text,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	AudioURL    string `json:"audioUrl,omitempty"`
	DocumentURL string `json:"documentUrl,omitempty"`
}

// Client dispatches messages to the WaSender API.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
	log    *logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout adjusts the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(apiURL, apiKey string, log *logging.Logger, opts ...Option) *Client {
	c := &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		http:   &http.Client{Timeout: DefaultTimeout},
		log:    log.Sub("wasender"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers a plain text message. Returns false on any failure.
func (c *Client) Send(ctx context.Context, recipient, text string) bool {
	return c.SendMedia(ctx, recipient, text, KindText, "")
}

// SendMedia delivers a message of the given kind. Media kinds require a
// media URL; text is used as the optional caption for image, video and
// document messages. Returns false on any failure, never an error.
func (c *Client) SendMedia(ctx context.Context, recipient, text string, kind Kind, mediaURL string) bool {
	to := domain.NormalizeRecipient(recipient)
	body := payload{To: to}

	switch kind {
	case KindText:
		body.Text = text
	case KindImage:
		if mediaURL == "" {
			return c.missingMedia(kind)
		}
		body.ImageURL = mediaURL
		body.Text = text
	case KindVideo:
		if mediaURL == "" {
			return c.missingMedia(kind)
		}
		body.VideoURL = mediaURL
		body.Text = text
	case KindAudio:
		if mediaURL == "" {
			return c.missingMedia(kind)
		}
		body.AudioURL = mediaURL
	case KindDocument:
		if mediaURL == "" {
			return c.missingMedia(kind)
		}
		body.DocumentURL = mediaURL
		body.Text = text
	default:
		c.log.Error().Str("kind", string(kind)).Msg("unsupported message kind")
		return false
	}

	raw, err := json.Marshal(body)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to encode payload")
		return false
	}

	c.log.Debug().Str("to", to).Str("kind", string(kind)).Msg("sending message")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(raw))
	if err != nil {
		c.log.Error().Err(err).Msg("failed to build request")
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("to", to).Msg("failed to send message")
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("to", to).
			Str("response", string(respBody)).
			Msg("message rejected")
		if resp.StatusCode == http.StatusUnprocessableEntity {
			c.log.Error().Msg("WaSender 422: likely a payload issue (recipient format, device, or media URL); check the payload logged above")
		}
		return false
	}

	c.log.Info().Str("to", to).Str("response", string(respBody)).Msg("message sent")
	return true
}

func (c *Client) missingMedia(kind Kind) bool {
	c.log.Error().Str("kind", string(kind)).Msg("media URL is required for this message kind")
	return false
}
