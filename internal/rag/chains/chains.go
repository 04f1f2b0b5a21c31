// Package chains holds small ready-made pipelines over a chat model.
package chains

import (
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/ragchain/internal/rag/llm"
	"github.com/akolanti/ragchain/internal/rag/pipeline"
	"github.com/akolanti/ragchain/internal/rag/prompt"
)

var (
	JokePrompt = prompt.FromMessages(
		[2]string{"system", "You are a comedian who tells jokes about {topic}."},
		[2]string{"human", "Tell me {joke_count} jokes."},
	)

	FeaturesPrompt = prompt.FromMessages(
		[2]string{"system", "You are an expert product reviewer."},
		[2]string{"human", "List the main features of the product {product_name}."},
	)
)

func reviewPrompt(kind string) prompt.Template {
	return prompt.FromMessages(
		[2]string{"system", "You are an expert product reviewer."},
		[2]string{"human", "Given these features: {features}, list the " + kind + " of these features."},
	)
}

// Basic expects {topic, joke_count} and yields the model's text.
func Basic(model llm.ChatModel, timeout time.Duration) *pipeline.SequentialStage {
	return pipeline.Sequential(pipeline.Prompt(JokePrompt), pipeline.Model(model, timeout), pipeline.StrOutput())
}

// Extended is Basic followed by upper-casing and a word count header.
func Extended(model llm.ChatModel, timeout time.Duration) *pipeline.SequentialStage {
	return Basic(model, timeout).Pipe(
		pipeline.Lambda(func(s string) (string, error) { return strings.ToUpper(s), nil }),
		pipeline.Lambda(func(s string) (string, error) { return WithWordCount(s), nil }),
	)
}

func WithWordCount(s string) string {
	return fmt.Sprintf("Word count: %d\n%s", len(strings.Fields(s)), s)
}

// ProductReview expects {product_name}. The model lists the product's
// features, then pros and cons are asked for concurrently and combined.
func ProductReview(model llm.ChatModel, timeout time.Duration) *pipeline.SequentialStage {
	branch := func(kind string) pipeline.Stage {
		return pipeline.Sequential(
			pipeline.Lambda(func(features string) (map[string]any, error) {
				return map[string]any{"features": features}, nil
			}),
			pipeline.Prompt(reviewPrompt(kind)),
			pipeline.Model(model, timeout),
			pipeline.StrOutput(),
		)
	}

	return pipeline.Sequential(
		pipeline.Prompt(FeaturesPrompt),
		pipeline.Model(model, timeout),
		pipeline.StrOutput(),
		pipeline.Parallel(map[string]pipeline.Stage{
			"pros": branch("pros"),
			"cons": branch("cons"),
		}),
		pipeline.Lambda(func(m map[string]any) (string, error) {
			pros, _ := m["pros"].(string)
			cons, _ := m["cons"].(string)
			return CombineProsCons(pros, cons), nil
		}),
	)
}

func CombineProsCons(pros, cons string) string {
	return fmt.Sprintf("Pros:\n%s\n\nCons:\n%s", pros, cons)
}
