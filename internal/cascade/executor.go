package cascade

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/josephgoksu/cascade/internal/prompts"
)

// structuredOutputHint is appended to every system instruction. JSON mode is
// enabled per backend in llm.NewCloseableChatModel; this line is what asks
// backends without a JSON mode (Anthropic) for the same thing.
const structuredOutputHint = "Respond with a single JSON object only. Do not wrap it in prose."

// Executor performs one generation round trip per stage.
type Executor struct {
	chatModel   model.BaseChatModel
	modelID     string
	temperature float32
}

// StageOutput is the raw text of a round trip and what it cost.
type StageOutput struct {
	Text  string
	Usage effects.TokenUsage
}

// NewExecutor creates an executor. modelID is used for cost accounting only.
func NewExecutor(chatModel model.BaseChatModel, modelID string, temperature float32) *Executor {
	return &Executor{chatModel: chatModel, modelID: modelID, temperature: temperature}
}

// Execute sends the pair with a token ceiling and returns the generated
// text. Gateway errors are returned unmodified. There is no retry; the
// caller's ctx is the only cancellation.
func (x *Executor) Execute(ctx context.Context, pair prompts.Pair, maxTokens int) (StageOutput, error) {
	system := strings.TrimSpace(pair.System + "\n\n" + structuredOutputHint)
	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(pair.User),
	}

	resp, err := x.chatModel.Generate(ctx, msgs,
		model.WithMaxTokens(maxTokens),
		model.WithTemperature(x.temperature),
	)
	if err != nil {
		return StageOutput{}, err
	}
	if resp == nil {
		return StageOutput{}, errors.New("generation returned no message")
	}

	return StageOutput{Text: resp.Content, Usage: x.usage(system+pair.User, resp)}, nil
}

func (x *Executor) usage(prompt string, resp *schema.Message) effects.TokenUsage {
	var u effects.TokenUsage
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		tu := resp.ResponseMeta.Usage
		u = effects.TokenUsage{
			PromptTokens:     tu.PromptTokens,
			CompletionTokens: tu.CompletionTokens,
			TotalTokens:      tu.TotalTokens,
		}
	} else {
		u = effects.TokenUsage{
			PromptTokens:     llm.EstimateTokens(prompt),
			CompletionTokens: llm.EstimateTokens(resp.Content),
			Estimated:        true,
		}
	}
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	u.EstimatedCostUSD = llm.CalculateCost(x.modelID, u.PromptTokens, u.CompletionTokens)
	return u
}
