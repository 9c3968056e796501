// Package llm defines the provider-neutral conversation types exchanged with
// a generative model and the Model interface the assistant depends on.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// Content is one turn of a conversation.
type Content struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Part holds exactly one of its fields.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
	InlineData       *InlineData       `json:"inlineData,omitempty"`
}

type FunctionCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// InlineData carries binary media. Data is base64 encoded on the wire.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// FunctionDeclaration advertises a callable tool to the model. Parameters is
// a JSON Schema document.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parametersJsonSchema,omitempty"`
}

// Request is a single generate call.
type Request struct {
	System      string
	Contents    []Content
	Tools       []FunctionDeclaration
	Temperature *float64

	// GoogleSearch enables search grounding on providers that support it.
	GoogleSearch bool

	// ResponseMIMEType and ResponseSchema request structured output.
	ResponseMIMEType string
	ResponseSchema   json.RawMessage
}

// Response is the first candidate of a generate call. Content is nil when
// the model returned no candidates.
type Response struct {
	Content      *Content
	FinishReason string
	Usage        Usage
}

type Usage struct {
	PromptTokens    int
	CandidateTokens int
	TotalTokens     int
}

// Model generates the next turn of a conversation.
type Model interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Text concatenates the text parts of the response.
func (r *Response) Text() string {
	if r == nil || r.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// FunctionCalls returns the function calls of the response in order.
func (r *Response) FunctionCalls() []FunctionCall {
	if r == nil || r.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range r.Content.Parts {
		if p.FunctionCall != nil {
			calls = append(calls, *p.FunctionCall)
		}
	}
	return calls
}

// Temperature returns a pointer to t for use in Request.
func Temperature(t float64) *float64 {
	return &t
}

// UserText builds a user turn holding a single text part.
func UserText(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{{Text: text}}}
}
