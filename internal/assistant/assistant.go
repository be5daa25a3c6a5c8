// Package assistant wraps the chat model with the fixed persona and the tool
// surface, and shields callers from every failure mode behind user-facing
// fallback strings.
package assistant

import (
	"context"
	"sync/atomic"

	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/llm"
	"github.com/nbruun/whisp/internal/logging"
	"github.com/nbruun/whisp/internal/tools"
)

// The three fallback strings. Callers and tests branch on failure category
// by comparing against these, so they must stay textually distinguishable.
const (
	// ApologyNoBrain is returned when the model credential is missing.
	ApologyNoBrain = "Sorry, I'm having trouble connecting to my brain right now. Please try again later."
	// ApologyProcessing is returned when the model call fails.
	ApologyProcessing = "I'm having trouble processing that request with my AI brain. Please try again later."
	// ApologyEmpty is returned when the model produced no usable text.
	ApologyEmpty = "I received an empty or unexpected response from my AI brain. Please try again."
)

// maxToolRounds bounds how many function-call rounds one response may take.
const maxToolRounds = 5

const personaDescription = `You are a helpful and concise AI assistant serving as Customer Support Agent, replying in a WhatsApp chat.

NEVER ASK THE USER FOR THEIR USER ID.
You will always get the userId in the system instruction. Use that userId when calling tools to get the user's data.

Use list-memories to get the user's data.
Use create-memory to create a new memory for the user. Infer the title from the message. Extract the content from the message. Extract the tags from the message.
Use update-memory to update a memory for the user.

Do not use Markdown formatting. Keep your answers short, friendly, and easy to read.
If your response is longer than 3 lines, split it into multiple messages using \n every 3 lines.
Each \n means a new WhatsApp message. Avoid long paragraphs or unnecessary explanations.

You are allowed to use emojis, bullet points, and links to make your responses more engaging and readable.
Please use them when appropriate and do not use anything that may be considered offensive or inappropriate.

Instead of saying "I'm having trouble processing that request with my AI brain. Please try again later."
say what exactly went wrong from your side.`

// Responder is the tool-augmented chat client.
type Responder struct {
	client    llm.Client
	tools     *tools.Registry
	hasAPIKey bool
	connected atomic.Bool
	log       *logging.Logger
}

// NewResponder creates a responder. hasAPIKey reflects whether the model
// credential was configured; without it every call degrades to the
// connectivity apology instead of failing.
func NewResponder(client llm.Client, registry *tools.Registry, hasAPIKey bool, log *logging.Logger) *Responder {
	return &Responder{
		client:    client,
		tools:     registry,
		hasAPIKey: hasAPIKey,
		log:       log.Sub("assistant"),
	}
}

// Connect establishes the tool-service session. It is idempotent and is
// re-invoked defensively before each call.
func (r *Responder) Connect() {
	if r.connected.CompareAndSwap(false, true) {
		r.log.Info().Int("tools", len(r.tools.All())).Msg("tool session connected")
	}
}

// GetResponse produces the model's reply for one inbound message. All
// failure categories collapse into fallback strings; this method never
// returns an error.
func (r *Responder) GetResponse(ctx context.Context, userID, message string, history []*domain.Message) string {
	if !r.hasAPIKey || r.client == nil {
		r.log.Error().Msg("model API key is not configured")
		return ApologyNoBrain
	}

	r.Connect()

	contents := mapHistory(history)
	contents = append(contents, llm.Content{
		Role:  llm.RoleUser,
		Parts: []llm.Part{{Text: message}},
	})

	req := llm.Request{
		SystemInstruction: r.systemInstruction(userID),
		Tools:             r.tools.Declarations(),
	}

	r.log.Debug().Str("userId", userID).Int("historyLen", len(history)).Msg("sending prompt to model")

	var resp *llm.Response
	for round := 0; round < maxToolRounds; round++ {
		req.Contents = contents

		var err error
		resp, err = r.client.Generate(ctx, req)
		if err != nil {
			r.log.Error().Err(err).Str("userId", userID).Msg("model call failed")
			return ApologyProcessing
		}

		calls := llm.FunctionCalls(resp)
		if len(calls) == 0 {
			break
		}

		// Echo the model's function-call turn, then answer every call.
		contents = append(contents, resp.Candidates[0])
		responses := make([]llm.Part, 0, len(calls))
		for _, call := range calls {
			r.log.Debug().Str("tool", call.Name).Msg("dispatching tool call")
			result := r.tools.Dispatch(ctx, call)
			responses = append(responses, llm.Part{FunctionResponse: &llm.FunctionResponse{
				Name:     call.Name,
				Response: map[string]any{"content": result},
			}})
		}
		contents = append(contents, llm.Content{Role: llm.RoleUser, Parts: responses})
	}

	text := llm.ExtractText(resp)
	if text == "" {
		r.log.Error().Str("userId", userID).Msg("model returned an empty or unexpected response")
		return ApologyEmpty
	}
	return text
}

func (r *Responder) systemInstruction(userID string) string {
	return personaDescription +
		"\nYou are talking to the user with the following userId. Use that userId when calling tools to get the user's data: " + userID
}

func mapHistory(history []*domain.Message) []llm.Content {
	out := make([]llm.Content, 0, len(history))
	for _, msg := range history {
		out = append(out, llm.Content{
			Role:  msg.Sender,
			Parts: []llm.Part{{Text: msg.Body}},
		})
	}
	return out
}
