package agent

import (
	"context"
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/tools"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIRunner drives an OpenAI chat model with function tools.
// Each Run starts from an empty message history.
type OpenAIRunner struct {
	client   openai.Client
	model    string
	tools    []openai.ChatCompletionToolUnionParam
	dispatch ToolDispatcher
}

// OpenAIOption configures an OpenAIRunner.
type OpenAIOption func(*OpenAIRunner)

// WithOpenAITools binds tool declarations for the model to call.
func WithOpenAITools(list []tools.Descriptor) OpenAIOption {
	return func(r *OpenAIRunner) {
		for _, desc := range list {
			r.tools = append(r.tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
				Name:        desc.Name,
				Description: openai.String(desc.Description),
				Parameters:  toFunctionParameters(desc.InputSchema),
			}))
		}
	}
}

// WithOpenAIDispatcher sets the executor for tool calls requested by the
// model. Without one, a requested tool call is acknowledged with an empty
// result, which is enough for calibration.
func WithOpenAIDispatcher(d ToolDispatcher) OpenAIOption {
	return func(r *OpenAIRunner) {
		r.dispatch = d
	}
}

// NewOpenAIRunner returns a Runner backed by the OpenAI chat API.
func NewOpenAIRunner(client openai.Client, model string, opts ...OpenAIOption) *OpenAIRunner {
	r := &OpenAIRunner{
		client: client,
		model:  model,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sends the prompt and resolves tool calls until the model produces a
// final answer or the step budget is exhausted. An answer that never called
// a tool is a failure: the prompt did not elicit a tool call.
func (r *OpenAIRunner) Run(ctx context.Context, prompt string, maxSteps int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Tools: r.tools,
	}

	called := false
	for step := 0; step < maxSteps; step++ {
		completion, err := r.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", errors.WithMessage(err, "chat completion failed")
		}
		if len(completion.Choices) == 0 {
			return "", errors.New("no choices in completion")
		}

		message := completion.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			if !called {
				return "", errors.New("model did not call a tool")
			}
			return message.Content, nil
		}

		called = true
		params.Messages = append(params.Messages, message.ToParam())
		for _, toolCall := range message.ToolCalls {
			result, err := r.execute(ctx, toolCall.Function.Name, toolCall.Function.Arguments)
			if err != nil {
				return "", errors.WithMessagef(err, "tool %s failed", toolCall.Function.Name)
			}
			params.Messages = append(params.Messages, openai.ToolMessage(result, toolCall.ID))
		}
	}
	return "", errors.Errorf("step budget of %d exhausted", maxSteps)
}

func (r *OpenAIRunner) execute(ctx context.Context, name, arguments string) (string, error) {
	// models occasionally emit sloppy JSON, parse leniently before dispatch
	var args map[string]any
	if err := ljson.Unmarshal([]byte(arguments), &args); err != nil {
		return "", errors.WithMessagef(err, "malformed arguments for %s", name)
	}

	logger.KV(xlog.DEBUG, "tool", name, "args", len(args))
	if r.dispatch == nil {
		return "ok", nil
	}
	return r.dispatch(ctx, name, arguments)
}

func toFunctionParameters(sc tools.Schema) openai.FunctionParameters {
	doc := map[string]any{
		"type": "object",
	}
	js, _ := json.Marshal(sc.Properties)
	var props map[string]any
	_ = json.Unmarshal(js, &props)
	if props != nil {
		doc["properties"] = props
	}
	if len(sc.Required) > 0 {
		doc["required"] = sc.Required
	}
	return openai.FunctionParameters(doc)
}
