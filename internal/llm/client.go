// Package llm defines the chat-model client interface and the Gemini
// implementation. Callers speak in content turns; tool calling is carried in
// function-call and function-response parts.
package llm

import "context"

// Role constants for content turns. Function responses ride back to the
// model as user turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one piece of a content turn: plain text, a model-issued function
// call, or a caller-supplied function response.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// Content is a single conversation turn.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// FunctionCall is the model asking for a named tool invocation.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// FunctionDeclaration advertises one callable tool to the model.
type FunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Request is one generate call: prior turns, a system instruction, and the
// advertised tool set (invoked in auto mode).
type Request struct {
	SystemInstruction string
	Contents          []Content
	Tools             []FunctionDeclaration
}

// Response is the model's structured answer.
type Response struct {
	Candidates []Content
}

// Client is the remote chat-model capability.
type Client interface {
	// Generate sends one request and returns the model's structured response.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider name.
	Name() string
}

// ExtractText concatenates the text of all candidates and parts, candidates
// and parts joined by newlines. An empty result means the model produced no
// usable text.
func ExtractText(resp *Response) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var out string
	for i, cand := range resp.Candidates {
		var text string
		for j, p := range cand.Parts {
			if j > 0 {
				text += "\n"
			}
			text += p.Text
		}
		if i > 0 {
			out += "\n"
		}
		out += text
	}
	return out
}

// FunctionCalls returns the function-call parts of the first candidate.
func FunctionCalls(resp *Response) []FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	var calls []FunctionCall
	for _, p := range resp.Candidates[0].Parts {
		if p.FunctionCall != nil {
			calls = append(calls, *p.FunctionCall)
		}
	}
	return calls
}
