package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	GenerateFunc func(ctx context.Context, req Request) (*Response, error)

	// Requests records every request seen, in order.
	Requests []Request
}

func (m *MockClient) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockClient) Generate(ctx context.Context, req Request) (*Response, error) {
	m.Requests = append(m.Requests, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &Response{Candidates: []Content{{
		Role:  RoleModel,
		Parts: []Part{{Text: "mock response"}},
	}}}, nil
}

// TextResponse builds a single-candidate text response.
func TextResponse(text string) *Response {
	return &Response{Candidates: []Content{{
		Role:  RoleModel,
		Parts: []Part{{Text: text}},
	}}}
}

// CallResponse builds a single-candidate response requesting a tool call.
func CallResponse(name string, args map[string]any) *Response {
	return &Response{Candidates: []Content{{
		Role:  RoleModel,
		Parts: []Part{{FunctionCall: &FunctionCall{Name: name, Args: args}}},
	}}}
}
