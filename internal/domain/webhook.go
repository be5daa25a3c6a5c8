package domain

// EventMessagesUpsert is the webhook event tag carrying chat messages.
// Other event tags are acknowledged without further processing.
const EventMessagesUpsert = "messages.upsert"

// WebhookEvent is the inbound envelope posted by the messaging provider.
type WebhookEvent struct {
	Event string       `json:"event"`
	Data  *WebhookData `json:"data,omitempty"`
}

// WebhookData nests the message payload of a messages.upsert event.
type WebhookData struct {
	Messages *WebhookMessage `json:"messages,omitempty"`
}

// WebhookMessage is one inbound chat message as delivered by the provider.
type WebhookMessage struct {
	ID               string          `json:"id,omitempty"`
	Key              WebhookKey      `json:"key"`
	Message          *WebhookContent `json:"message,omitempty"`
	MessageTimestamp *MessageTS      `json:"messageTimestamp,omitempty"`
	Status           int             `json:"status,omitempty"`
	StubType         string          `json:"messageStubType,omitempty"`
	StubParameters   []string        `json:"messageStubParameters,omitempty"`
}

// WebhookKey identifies a message and its origin.
type WebhookKey struct {
	ID        string `json:"id"`
	FromMe    bool   `json:"fromMe,omitempty"`
	RemoteJID string `json:"remoteJid,omitempty"`
}

// WebhookContent carries the extractable message bodies.
type WebhookContent struct {
	Conversation        string               `json:"conversation,omitempty"`
	ExtendedTextMessage *ExtendedTextMessage `json:"extendedTextMessage,omitempty"`
}

// ExtendedTextMessage is the quoted/extended text variant.
type ExtendedTextMessage struct {
	Text string `json:"text"`
}

// MessageTS is the provider's split 64-bit timestamp encoding.
type MessageTS struct {
	Low      int64 `json:"low"`
	High     int64 `json:"high"`
	Unsigned bool  `json:"unsigned"`
}

// Text returns the extractable text body of the message, if any.
func (m *WebhookMessage) Text() string {
	if m == nil || m.Message == nil {
		return ""
	}
	if m.Message.Conversation != "" {
		return m.Message.Conversation
	}
	if m.Message.ExtendedTextMessage != nil {
		return m.Message.ExtendedTextMessage.Text
	}
	return ""
}
