// Package agent front-ends the resolver with an AI assistant: a thin REST
// client for the Foundry Agents service plus a gateway that runs threads and
// executes tool calls through a closed dispatch table.
package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	azruntime "github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

// tokenScope is the audience of the Foundry Agents data plane.
const tokenScope = "https://ai.azure.com/.default"

// Run statuses the gateway reacts to.
const (
	runStatusQueued         = "queued"
	runStatusInProgress     = "in_progress"
	runStatusRequiresAction = "requires_action"
	runStatusCompleted      = "completed"
)

// Thread is one conversation on the agent service.
type Thread struct {
	ID string `json:"id"`
}

// Message is one message on a thread.
type Message struct {
	ID      string           `json:"id"`
	Role    string           `json:"role"`
	Content []MessageContent `json:"content"`
}

// MessageContent is one content block of a message.
type MessageContent struct {
	Type string       `json:"type"`
	Text *MessageText `json:"text,omitempty"`
}

// MessageText is the text payload of a content block.
type MessageText struct {
	Value string `json:"value"`
}

// MessageList is a page of thread messages, newest first.
type MessageList struct {
	Data []Message `json:"data"`
}

// Run is one agent execution on a thread.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	Status         string          `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *RunError       `json:"last_error,omitempty"`
}

// RequiredAction asks the caller to execute tool calls before the run can
// continue.
type RequiredAction struct {
	Type              string                   `json:"type"`
	SubmitToolOutputs *SubmitToolOutputsAction `json:"submit_tool_outputs,omitempty"`
}

// SubmitToolOutputsAction lists the pending tool calls of a run.
type SubmitToolOutputsAction struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

// ToolCall is one pending function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the function and carries its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput answers one tool call.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// RunError is the terminal error of a failed run.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToolDefinition registers one function on an agent.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition is the JSON schema of one agent function.
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// AgentInfo identifies a provisioned agent.
type AgentInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is a minimal Foundry Agents data-plane client. It covers exactly the
// operations the gateway and the provisioning CLI need.
type Client struct {
	endpoint   string
	apiVersion string
	pipeline   azruntime.Pipeline
}

// NewClient creates a client for the given project endpoint.
func NewClient(endpoint string, cred azcore.TokenCredential, apiVersion string) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("project endpoint is required")
	}

	pl := azruntime.NewPipeline("maintwatch", "dev", azruntime.PipelineOptions{
		PerRetry: []policy.Policy{
			azruntime.NewBearerTokenPolicy(cred, []string{tokenScope}, nil),
		},
	}, nil)

	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiVersion: apiVersion,
		pipeline:   pl,
	}, nil
}

// CreateThread starts a new conversation.
func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var thread Thread
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// CreateMessage appends a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, role, content string) error {
	body := map[string]string{"role": role, "content": content}
	return c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", body, nil)
}

// CreateRun starts an agent run on a thread.
func (c *Client) CreateRun(ctx context.Context, threadID, agentID string) (*Run, error) {
	body := map[string]string{"assistant_id": agentID}
	var run Run
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var run Run
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// SubmitToolOutputs answers the pending tool calls of a run.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	body := map[string]interface{}{"tool_outputs": outputs}
	var run Run
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/submit_tool_outputs", body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListMessages returns the messages of a thread, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string) (*MessageList, error) {
	var list MessageList
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages?order=desc", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateAgent provisions an agent with the given tool set.
func (c *Client) CreateAgent(ctx context.Context, model, name, instructions string, tools []ToolDefinition) (*AgentInfo, error) {
	body := map[string]interface{}{
		"model":        model,
		"name":         name,
		"instructions": instructions,
		"tools":        tools,
	}
	var info AgentInfo
	if err := c.do(ctx, http.MethodPost, "/assistants", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := azruntime.NewRequest(ctx, method, c.endpoint+path)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	qp := req.Raw().URL.Query()
	qp.Set("api-version", c.apiVersion)
	req.Raw().URL.RawQuery = qp.Encode()

	if body != nil {
		if err := azruntime.MarshalAsJSON(req, body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return err
	}
	if !azruntime.HasStatusCode(resp, http.StatusOK, http.StatusCreated) {
		return azruntime.NewResponseError(resp)
	}
	if out != nil {
		if err := azruntime.UnmarshalAsJSON(resp, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
