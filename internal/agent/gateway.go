package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
	"cloudpasture.io/maintwatch/internal/pkg/logger"
)

// AgentsClient is the slice of the REST client the gateway uses.
type AgentsClient interface {
	CreateThread(ctx context.Context) (*Thread, error)
	CreateMessage(ctx context.Context, threadID, role, content string) error
	CreateRun(ctx context.Context, threadID, agentID string) (*Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)
	ListMessages(ctx context.Context, threadID string) (*MessageList, error)
}

// QueryResult is the gateway's answer to one natural-language query.
type QueryResult struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
}

// GatewayOptions tune the run loop.
type GatewayOptions struct {
	PollInterval time.Duration
	RunTimeout   time.Duration

	// DefaultSubscription and DefaultResourceGroup are appended to the user
	// query as a context line so the model fills tool arguments correctly.
	DefaultSubscription  string
	DefaultResourceGroup string
}

// Gateway runs user queries against the provisioned agent, executing tool
// calls through the static dispatch table. Execution is request-scoped and
// sequential; the conversation id is the service-side thread id.
type Gateway struct {
	client   AgentsClient
	executor *Executor
	agentID  string
	opts     GatewayOptions
}

// NewGateway creates a gateway for one provisioned agent.
func NewGateway(client AgentsClient, executor *Executor, agentID string, opts GatewayOptions) *Gateway {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 2 * time.Minute
	}
	return &Gateway{client: client, executor: executor, agentID: agentID, opts: opts}
}

// Query runs one user query. An empty conversationID starts a new thread;
// passing a previous result's conversation id continues that thread.
func (g *Gateway) Query(ctx context.Context, query, conversationID string) (*QueryResult, error) {
	threadID := conversationID
	if threadID == "" {
		thread, err := g.client.CreateThread(ctx)
		if err != nil {
			return nil, agentUnavailable("create thread", err)
		}
		threadID = thread.ID
	}

	if err := g.client.CreateMessage(ctx, threadID, "user", g.withContextLine(query)); err != nil {
		return nil, agentUnavailable("create message", err)
	}

	run, err := g.client.CreateRun(ctx, threadID, g.agentID)
	if err != nil {
		return nil, agentUnavailable("create run", err)
	}

	run, err = g.awaitRun(ctx, threadID, run)
	if err != nil {
		return nil, err
	}

	response, err := g.lastAssistantMessage(ctx, threadID)
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		Response:       response,
		ConversationID: threadID,
		Status:         run.Status,
	}, nil
}

// awaitRun polls the run until it reaches a terminal state, executing tool
// calls as they come due.
func (g *Gateway) awaitRun(ctx context.Context, threadID string, run *Run) (*Run, error) {
	deadline := time.Now().Add(g.opts.RunTimeout)

	for {
		switch run.Status {
		case runStatusCompleted:
			return run, nil

		case runStatusRequiresAction:
			next, err := g.executeToolCalls(ctx, threadID, run)
			if err != nil {
				return nil, err
			}
			run = next

		case runStatusQueued, runStatusInProgress:
			if time.Now().After(deadline) {
				return nil, apperrors.New(apperrors.CodeAgentUnavailable,
					"agent run did not finish in time", http.StatusBadGateway)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.opts.PollInterval):
			}
			next, err := g.client.GetRun(ctx, threadID, run.ID)
			if err != nil {
				return nil, agentUnavailable("poll run", err)
			}
			run = next

		default:
			msg := "agent run ended in status " + run.Status
			if run.LastError != nil {
				msg = fmt.Sprintf("%s: %s", msg, run.LastError.Message)
			}
			return nil, apperrors.New(apperrors.CodeAgentUnavailable, msg, http.StatusBadGateway)
		}
	}
}

func (g *Gateway) executeToolCalls(ctx context.Context, threadID string, run *Run) (*Run, error) {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return nil, apperrors.New(apperrors.CodeAgentUnavailable,
			"run requires action but carries no tool calls", http.StatusBadGateway)
	}

	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
	outputs := make([]ToolOutput, 0, len(calls))
	for _, call := range calls {
		output, err := g.executor.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
		if err != nil {
			// The model sees the failure and can adjust; the run goes on.
			logger.Warn("tool call failed",
				zap.String("tool", call.Function.Name),
				zap.Error(err),
			)
			output = errorOutput(err)
		}
		outputs = append(outputs, ToolOutput{ToolCallID: call.ID, Output: output})
	}

	next, err := g.client.SubmitToolOutputs(ctx, threadID, run.ID, outputs)
	if err != nil {
		return nil, agentUnavailable("submit tool outputs", err)
	}
	return next, nil
}

func (g *Gateway) lastAssistantMessage(ctx context.Context, threadID string) (string, error) {
	list, err := g.client.ListMessages(ctx, threadID)
	if err != nil {
		return "", agentUnavailable("list messages", err)
	}
	for _, msg := range list.Data {
		if msg.Role != "assistant" {
			continue
		}
		for _, content := range msg.Content {
			if content.Text != nil && content.Text.Value != "" {
				return content.Text.Value, nil
			}
		}
	}
	return "", apperrors.New(apperrors.CodeAgentUnavailable,
		"agent produced no response", http.StatusBadGateway)
}

func (g *Gateway) withContextLine(query string) string {
	if g.opts.DefaultSubscription == "" {
		return query
	}
	line := "\n\nContext: default subscription_id is " + g.opts.DefaultSubscription
	if g.opts.DefaultResourceGroup != "" {
		line += ", default resource_group is " + g.opts.DefaultResourceGroup
	}
	return query + line
}

func errorOutput(err error) string {
	payload := map[string]string{"error": err.Error()}
	if appErr, ok := apperrors.IsAppError(err); ok {
		payload["code"] = appErr.Code
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func agentUnavailable(op string, err error) error {
	return apperrors.Wrap(err, apperrors.CodeAgentUnavailable,
		"agent service request failed: "+op, http.StatusBadGateway)
}
