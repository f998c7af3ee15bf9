package agent

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/tools"
)

// AnthropicRunner verifies tool elicitation with a single model turn: the
// prompt succeeds when the model responds with a tool_use block for one of
// the declared tools. Tool outputs are not fed back; calibration only needs
// to observe that a correct call was produced.
type AnthropicRunner struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	tools     []anthropic.ToolUnionParam
}

// NewAnthropicRunner returns a Runner backed by the Anthropic Messages API.
func NewAnthropicRunner(client anthropic.Client, model string, list []tools.Descriptor) *AnthropicRunner {
	r := &AnthropicRunner{
		client:    client,
		model:     model,
		maxTokens: 1024,
	}
	for _, desc := range list {
		r.tools = append(r.tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        desc.Name,
				Description: anthropic.String(desc.Description),
				InputSchema: toInputSchema(desc.InputSchema),
			},
		})
	}
	return r
}

// Run implements Runner.
func (r *AnthropicRunner) Run(ctx context.Context, prompt string, _ int) (string, error) {
	message, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: r.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: r.tools,
	})
	if err != nil {
		return "", errors.WithMessage(err, "message request failed")
	}

	for _, block := range message.Content {
		if toolUse, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			args, err := json.Marshal(toolUse.Input)
			if err != nil {
				return "", errors.WithMessage(err, "failed to encode tool input")
			}
			return string(args), nil
		}
	}
	return "", errors.New("model did not call a tool")
}

func toInputSchema(sc tools.Schema) anthropic.ToolInputSchemaParam {
	js, _ := json.Marshal(sc.Properties)
	var props map[string]any
	_ = json.Unmarshal(js, &props)
	return anthropic.ToolInputSchemaParam{
		Properties: props,
		Required:   sc.Required,
	}
}
