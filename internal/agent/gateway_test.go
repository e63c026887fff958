package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
	"cloudpasture.io/maintwatch/internal/pkg/logger"
)

func init() {
	// Initialize logger for tests
	_ = logger.Init("error", "json")
}

// scriptedClient walks a run through queued -> requires_action -> completed.
type scriptedClient struct {
	threadsCreated int
	messages       []string
	submitted      []ToolOutput

	runStates []Run
	statePos  int

	failCreateRun bool
}

func (c *scriptedClient) CreateThread(context.Context) (*Thread, error) {
	c.threadsCreated++
	return &Thread{ID: "thread-1"}, nil
}

func (c *scriptedClient) CreateMessage(_ context.Context, _, _, content string) error {
	c.messages = append(c.messages, content)
	return nil
}

func (c *scriptedClient) CreateRun(context.Context, string, string) (*Run, error) {
	if c.failCreateRun {
		return nil, assert.AnError
	}
	return c.nextRun(), nil
}

func (c *scriptedClient) GetRun(context.Context, string, string) (*Run, error) {
	return c.nextRun(), nil
}

func (c *scriptedClient) SubmitToolOutputs(_ context.Context, _, _ string, outputs []ToolOutput) (*Run, error) {
	c.submitted = append(c.submitted, outputs...)
	return c.nextRun(), nil
}

func (c *scriptedClient) ListMessages(context.Context, string) (*MessageList, error) {
	return &MessageList{Data: []Message{
		{Role: "assistant", Content: []MessageContent{{Type: "text", Text: &MessageText{Value: "2 VMs are covered by weekly-patch."}}}},
		{Role: "user", Content: []MessageContent{{Type: "text", Text: &MessageText{Value: "which vms?"}}}},
	}}, nil
}

func (c *scriptedClient) nextRun() *Run {
	run := c.runStates[c.statePos]
	if c.statePos < len(c.runStates)-1 {
		c.statePos++
	}
	return &run
}

func fastOptions() GatewayOptions {
	return GatewayOptions{
		PollInterval:        time.Millisecond,
		RunTimeout:          time.Second,
		DefaultSubscription: "default-sub",
	}
}

func TestQuery_ToolCallRoundTrip(t *testing.T) {
	client := &scriptedClient{runStates: []Run{
		{ID: "run-1", Status: runStatusQueued},
		{ID: "run-1", Status: runStatusRequiresAction, RequiredAction: &RequiredAction{
			Type: "submit_tool_outputs",
			SubmitToolOutputs: &SubmitToolOutputsAction{ToolCalls: []ToolCall{{
				ID:   "call-1",
				Type: "function",
				Function: FunctionCall{
					Name:      string(ToolConfigurationDetails),
					Arguments: `{"subscription_id":"sub-1"}`,
				},
			}}},
		}},
		{ID: "run-1", Status: runStatusCompleted},
	}}

	g := NewGateway(client, NewExecutor(&fakeReports{}, "default-sub", ""), "agent-1", fastOptions())

	result, err := g.Query(context.Background(), "which vms does weekly-patch cover?", "")
	require.NoError(t, err)

	assert.Equal(t, "thread-1", result.ConversationID)
	assert.Equal(t, runStatusCompleted, result.Status)
	assert.Equal(t, "2 VMs are covered by weekly-patch.", result.Response)

	require.Len(t, client.submitted, 1)
	assert.Equal(t, "call-1", client.submitted[0].ToolCallID)
	assert.Contains(t, client.submitted[0].Output, "total_configurations")

	// The context line rides along with the user query.
	require.Len(t, client.messages, 1)
	assert.Contains(t, client.messages[0], "default-sub")
}

func TestQuery_ReusesConversation(t *testing.T) {
	client := &scriptedClient{runStates: []Run{{ID: "run-1", Status: runStatusCompleted}}}
	g := NewGateway(client, NewExecutor(&fakeReports{}, "", ""), "agent-1", fastOptions())

	result, err := g.Query(context.Background(), "and last week?", "thread-7")
	require.NoError(t, err)
	assert.Equal(t, "thread-7", result.ConversationID)
	assert.Zero(t, client.threadsCreated)
}

func TestQuery_UnknownToolBecomesErrorOutput(t *testing.T) {
	client := &scriptedClient{runStates: []Run{
		{ID: "run-1", Status: runStatusRequiresAction, RequiredAction: &RequiredAction{
			SubmitToolOutputs: &SubmitToolOutputsAction{ToolCalls: []ToolCall{{
				ID:       "call-1",
				Function: FunctionCall{Name: "not_a_tool", Arguments: `{}`},
			}}},
		}},
		{ID: "run-1", Status: runStatusCompleted},
	}}
	g := NewGateway(client, NewExecutor(&fakeReports{}, "", ""), "agent-1", fastOptions())

	_, err := g.Query(context.Background(), "hi", "")
	require.NoError(t, err)
	require.Len(t, client.submitted, 1)
	assert.Contains(t, client.submitted[0].Output, "unknown tool")
}

func TestQuery_FailedRun(t *testing.T) {
	client := &scriptedClient{runStates: []Run{
		{ID: "run-1", Status: "failed", LastError: &RunError{Code: "server_error", Message: "boom"}},
	}}
	g := NewGateway(client, NewExecutor(&fakeReports{}, "", ""), "agent-1", fastOptions())

	_, err := g.Query(context.Background(), "hi", "")
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAgentUnavailable, appErr.Code)
	assert.Contains(t, appErr.Message, "boom")
}

func TestQuery_ServiceFailure(t *testing.T) {
	client := &scriptedClient{failCreateRun: true, runStates: []Run{{}}}
	g := NewGateway(client, NewExecutor(&fakeReports{}, "", ""), "agent-1", fastOptions())

	_, err := g.Query(context.Background(), "hi", "")
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAgentUnavailable, appErr.Code)
}

func TestQuery_RunTimeout(t *testing.T) {
	client := &scriptedClient{runStates: []Run{{ID: "run-1", Status: runStatusInProgress}}}
	opts := fastOptions()
	opts.RunTimeout = 5 * time.Millisecond
	g := NewGateway(client, NewExecutor(&fakeReports{}, "", ""), "agent-1", opts)

	_, err := g.Query(context.Background(), "hi", "")
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAgentUnavailable, appErr.Code)
}
