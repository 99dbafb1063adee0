package openai

import (
	"context"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "gpt-4"

const systemPrompt = `You are a professional portfolio analyst. You will receive the result of a Monte Carlo efficient frontier study: the maximum Sharpe ratio weights, the minimum volatility weights and the sample period.

Your response must follow this exact structure:

**Allocation:**
[What the optimal weights say about the assets, in plain terms]

**Trade-offs:**
[How the max Sharpe and minimum volatility portfolios differ]

**Caveats:**
[Why historical estimates may not hold going forward]

Guidelines:
- Keep it under 200 words
- Do not invent numbers that are not in the input
- Do not give personalized financial advice`

// Commentator asks a chat model for a short reading of a frontier result.
type Commentator struct {
	cli   oa.Client
	model string
}

func NewCommentator(apiKey, model string, opts ...option.RequestOption) *Commentator {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Commentator{cli: oa.NewClient(opts...), model: model}
}

// Comment returns commentary on a rendered weights report.
func (c *Commentator) Comment(ctx context.Context, report string) (string, error) {
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: c.model,
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage(userPrompt(report)),
		},
		MaxTokens: oa.Int(600), // fits one telegram message
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func userPrompt(report string) string {
	report = strings.TrimSpace(report)
	if len(report) > 4000 {
		report = report[:4000]
	}
	return "Frontier study result:\n" + report + "\n\nComment following the structured format."
}
