// Package evaluate implements the Evaluator component: it assigns an
// ordinal priority and a list of matched interests to an item by
// weighing it against the user's free-form interest profile. Unlike the
// Summarizer, it has no teacher counterpart — the coercion layer here is
// what keeps its output deterministic despite raw LLM variance.
package evaluate

import (
	"context"
	"encoding/json"
	"strings"

	"prismis/internal/domain/entity"
)

// Input is what the evaluator needs to judge one item against the
// user's interest profile.
type Input struct {
	Title       string
	URL         string
	Content     string
	UserContext entity.UserContext
}

// Output is the evaluator's normalized result: Priority is always one
// of the four recognized values and MatchedInterests is always a
// non-nil slice, regardless of what the raw model response looked like.
type Output struct {
	Priority         entity.Priority
	MatchedInterests []string
	Reasoning        string
}

// Evaluator assigns priority and matched interests to one item.
type Evaluator interface {
	Evaluate(ctx context.Context, in Input) (Output, error)
}

// rawResponse is the JSON envelope the system prompt asks the model to
// emit, before coercion.
type rawResponse struct {
	Priority         string       `json:"priority"`
	MatchedInterests interestList `json:"matched_interests"`
	Reasoning        string       `json:"reasoning"`
}

// interestList decodes matched_interests leniently: a value that is not
// a list of strings leaves it nil rather than failing the whole response.
type interestList []string

func (l *interestList) UnmarshalJSON(data []byte) error {
	var items []string
	if json.Unmarshal(data, &items) == nil {
		*l = items
	}
	return nil
}

// normalize applies spec-mandated coercion so that repeated runs over
// identical input always produce the same output envelope even when the
// underlying model's raw response varies: priority is case-folded and
// any value outside the four recognized levels becomes "medium";
// matched_interests is forced to a non-nil list.
func normalize(raw rawResponse) Output {
	priority := entity.Priority(strings.ToLower(strings.TrimSpace(raw.Priority)))
	if !entity.ValidPriority(priority) {
		priority = entity.PriorityMedium
	}

	interests := []string(raw.MatchedInterests)
	if interests == nil {
		interests = []string{}
	}

	return Output{
		Priority:         priority,
		MatchedInterests: interests,
		Reasoning:        raw.Reasoning,
	}
}

const systemPrompt = `You compare one piece of content against a reader's stated interests and respond with a single JSON object and nothing else — no markdown fence, no commentary.

The interest profile groups the reader's interests into high, medium, and low priority, plus a "not interested" list. Weigh the content against all of it.

Fields:
- "priority": exactly one of "high", "medium", "low", "none". "none" means the content matches nothing the reader cares about or matches something on their not-interested list.
- "matched_interests": the specific interests from the profile that this content matches. Empty list if none matched.
- "reasoning": a short, optional note on why you chose this priority.

Respond only with the JSON object.`
