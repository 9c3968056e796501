// Package assistant answers natural-language spending questions. It runs a
// bounded tool-calling conversation with the chat model, then offers the
// result to a second model that may turn it into a shopping list pass.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raseed-labs/raseed-backend/internal/llm"
	"github.com/raseed-labs/raseed-backend/internal/tools"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"go.uber.org/zap"
)

const (
	DefaultMaxTurns = 5

	// NoResponseText is the answer when the model never produced any text.
	NoResponseText = "No response from model."

	answerPassTitle       = "Your Agent's Answer"
	shoppingPassTitle     = "Your Shopping List"
	shoppingPassSubtitle  = "Created from your request"
	toolNotFoundMessage   = "tool not found"
	unknownToolMetricName = "unknown"
)

type FinalState string

const (
	StateAnswered      FinalState = "answered"
	StateModelError    FinalState = "model_error"
	StateEmptyResponse FinalState = "empty_response"
	StateTurnLimit     FinalState = "turn_limit"
)

// Trace summarises how a query was answered.
type Trace struct {
	RoundTrips          int        `json:"round_trips"`
	ToolCalls           int        `json:"tool_calls"`
	FinalState          FinalState `json:"final_state"`
	ShoppingListCreated bool       `json:"shopping_list_created"`
}

// Assistant is stateless between queries and safe for concurrent use.
type Assistant struct {
	chat          llm.Model
	shopping      llm.Model
	primary       *tools.Registry
	shoppingTools *tools.Registry
	maxTurns      int
	temperature   float64
	now           func() time.Time
	log           *zap.SugaredLogger
	metrics       *assistantMetrics
}

type Option func(*Assistant)

// WithMaxTurns caps the model round trips per query. Values below one keep
// the default.
func WithMaxTurns(n int) Option {
	return func(a *Assistant) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

func WithTemperature(t float64) Option {
	return func(a *Assistant) {
		a.temperature = t
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.now = now
	}
}

// New creates an assistant. primary is offered to the chat model on every
// round trip; shoppingSet is only offered in the shopping list pass.
func New(chat, shopping llm.Model, primary, shoppingSet *tools.Registry, opts ...Option) *Assistant {
	a := &Assistant{
		chat:          chat,
		shopping:      shopping,
		primary:       primary,
		shoppingTools: shoppingSet,
		maxTurns:      DefaultMaxTurns,
		now:           time.Now,
		log:           logger.GetLogger().Named("assistant"),
		metrics:       newAssistantMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessQuery answers query for userID. It never fails: model and tool
// errors end the conversation with the best answer available.
func (a *Assistant) ProcessQuery(ctx context.Context, query, userID string) (*types.WalletPass, Trace) {
	start := time.Now()
	answer, execLog, trace := a.converse(ctx, query, userID)

	pass, ok := a.shoppingListPass(ctx, query, answer)
	if ok {
		trace.ShoppingListCreated = true
		a.metrics.shoppingLists.Inc()
	} else {
		pass = &types.WalletPass{
			PassType: types.PassTypeOther,
			Title:    answerPassTitle,
			Subtitle: query,
			Details: types.AnswerDetails{
				Response:         answer,
				ExecutionResults: execLog,
			},
		}
	}
	pass.UserID = userID
	pass.CreatedAt = a.now().UTC()

	a.metrics.queries.WithLabelValues(string(trace.FinalState)).Inc()
	a.metrics.roundTrips.Observe(float64(trace.RoundTrips))
	a.log.Infow("Query processed",
		"user_id", userID,
		"round_trips", trace.RoundTrips,
		"tool_calls", trace.ToolCalls,
		"final_state", trace.FinalState,
		"pass_type", pass.PassType,
		"elapsed_ms", time.Since(start).Milliseconds())
	return pass, trace
}

// converse runs the tool-calling loop and returns the final answer with the
// execution log of every found tool invocation.
func (a *Assistant) converse(ctx context.Context, query, userID string) (string, []types.ToolExecution, Trace) {
	history := []llm.Content{llm.UserText(seedMessage(userID, query))}
	execLog := []types.ToolExecution{}
	system := systemPrompt(a.now())
	declarations := a.primary.Declarations()

	var trace Trace
	var lastText string
	for trace.RoundTrips < a.maxTurns {
		trace.RoundTrips++
		resp, err := a.chat.Generate(ctx, &llm.Request{
			System:      system,
			Contents:    history,
			Tools:       declarations,
			Temperature: llm.Temperature(a.temperature),
		})
		if err != nil {
			a.log.Warnw("Model call failed", "user_id", userID, "round_trip", trace.RoundTrips, "error", err)
			trace.FinalState = StateModelError
			break
		}
		if resp.Content == nil || len(resp.Content.Parts) == 0 {
			a.log.Warnw("Model returned no content", "user_id", userID, "round_trip", trace.RoundTrips, "finish_reason", resp.FinishReason)
			trace.FinalState = StateEmptyResponse
			break
		}
		if text := resp.Text(); text != "" {
			lastText = text
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			trace.FinalState = StateAnswered
			break
		}

		history = append(history, *resp.Content)
		results := make([]llm.Part, 0, len(calls))
		for _, call := range calls {
			trace.ToolCalls++
			results = append(results, llm.Part{FunctionResponse: a.execute(ctx, userID, call, &execLog)})
		}
		history = append(history, llm.Content{Role: llm.RoleTool, Parts: results})
	}
	if trace.FinalState == "" {
		a.log.Warnw("Round trip limit reached", "user_id", userID, "max_turns", a.maxTurns)
		trace.FinalState = StateTurnLimit
	}

	if lastText == "" {
		lastText = NoResponseText
	}
	return lastText, execLog, trace
}

// execute runs one function call and builds the response part sent back to
// the model. Found tools are recorded in execLog whether or not they fail.
func (a *Assistant) execute(ctx context.Context, userID string, call llm.FunctionCall, execLog *[]types.ToolExecution) *llm.FunctionResponse {
	resp := &llm.FunctionResponse{ID: call.ID, Name: call.Name}

	tool, ok := a.primary.Get(call.Name)
	if !ok {
		a.log.Warnw("Model called an unknown tool", "user_id", userID, "tool", call.Name)
		a.metrics.toolCalls.WithLabelValues(unknownToolMetricName, "not_found").Inc()
		resp.Response = map[string]any{"error": toolNotFoundMessage}
		return resp
	}

	args, err := tools.ArgumentMap(call.Args)
	if err != nil {
		args = map[string]any{}
	}
	entry := types.ToolExecution{Tool: call.Name, Args: args}

	result, err := invoke(ctx, tool, userID, call.Args)
	if err == nil {
		var payload []byte
		payload, err = json.Marshal(result)
		if err == nil {
			entry.Result = result
			resp.Response = map[string]any{"content": string(payload)}
		}
	}
	if err != nil {
		a.log.Warnw("Tool call failed", "user_id", userID, "tool", call.Name, "error", err)
		a.metrics.toolCalls.WithLabelValues(call.Name, "error").Inc()
		entry.Error = err.Error()
		resp.Response = map[string]any{"error": err.Error()}
	} else {
		a.log.Debugw("Tool call succeeded", "user_id", userID, "tool", call.Name, "args", args)
		a.metrics.toolCalls.WithLabelValues(call.Name, "ok").Inc()
	}

	*execLog = append(*execLog, entry)
	return resp
}

func invoke(ctx context.Context, tool tools.Tool, userID string, args json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", tool.Name(), r)
		}
	}()
	return tool.Invoke(ctx, userID, args)
}

// shoppingListPass makes one call to the shopping model offering only the
// shopping list tool. Any failure yields ok=false.
func (a *Assistant) shoppingListPass(ctx context.Context, query, answer string) (*types.WalletPass, bool) {
	if a.shopping == nil || a.shoppingTools == nil {
		return nil, false
	}

	resp, err := a.shopping.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.UserText(shoppingListPrompt(query, answer))},
		Tools:    a.shoppingTools.Declarations(),
	})
	if err != nil {
		a.log.Warnw("Shopping list pass failed", "error", err)
		return nil, false
	}
	calls := resp.FunctionCalls()
	if len(calls) == 0 || calls[0].Name != tools.ShoppingListToolName {
		return nil, false
	}
	tool, ok := a.shoppingTools.Get(calls[0].Name)
	if !ok {
		return nil, false
	}

	// The shopping list tool does not read receipts, so no user id is passed.
	out, err := invoke(ctx, tool, "", calls[0].Args)
	if err != nil {
		a.log.Warnw("Shopping list tool failed", "error", err)
		return nil, false
	}
	list, ok := out.(*tools.ShoppingListPassResult)
	if !ok {
		return nil, false
	}
	return &types.WalletPass{
		PassType: types.PassTypeShoppingList,
		Title:    shoppingPassTitle,
		Subtitle: shoppingPassSubtitle,
		Details: types.ShoppingListDetails{
			Items:      list.Items,
			Store:      list.Store,
			Notes:      list.Notes,
			WalletLink: list.WalletLink,
			Response:   answer,
		},
	}, true
}
