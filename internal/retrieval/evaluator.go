package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"search-orchestrator/internal/common/logger"
)

// Evaluator asks the text-completion collaborator whether the collected
// evidence answers the query. It never returns an error: every parse or call
// failure degrades to the neutral verdict and the loop continues.
type Evaluator struct {
	completer Completer
	logger    logger.Logger
}

func NewEvaluator(completer Completer, log logger.Logger) *Evaluator {
	return &Evaluator{
		completer: completer,
		logger:    log.With(map[string]interface{}{"component": "evaluator"}),
	}
}

// Evaluate judges the sufficiency of the evidence bundle. Confidence is
// clamped to [0,1].
func (e *Evaluator) Evaluate(ctx context.Context, query string, evidence []Evidence) Verdict {
	if e.completer == nil || len(evidence) == 0 {
		return NeutralVerdict()
	}

	raw, err := e.completer.Complete(ctx, e.buildPrompt(query, evidence), CompleteOptions{
		Temperature: floatPtr(0),
		MaxTokens:   512,
		JSONMode:    true,
	})
	if err != nil {
		e.logger.Warn("evaluation call failed, continuing as non-converged", map[string]interface{}{
			"error": err.Error(),
		})
		return NeutralVerdict()
	}

	verdict, ok := parseVerdict(raw)
	if !ok {
		e.logger.Warn("evaluation reply unparseable, continuing as non-converged", map[string]interface{}{
			"raw": truncateForLog(raw),
		})
		return NeutralVerdict()
	}
	return verdict
}

func parseVerdict(raw string) (Verdict, bool) {
	var reply struct {
		Answered     bool     `json:"answered"`
		Confidence   float64  `json:"confidence"`
		MissingFacts []string `json:"missingFacts"`
	}

	candidate := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(candidate), &reply); err != nil {
		stripped, fenced := stripCodeFence(candidate)
		if !fenced {
			return Verdict{}, false
		}
		if err := json.Unmarshal([]byte(stripped), &reply); err != nil {
			return Verdict{}, false
		}
	}

	if reply.Confidence < 0 {
		reply.Confidence = 0
	}
	if reply.Confidence > 1 {
		reply.Confidence = 1
	}
	if reply.MissingFacts == nil {
		reply.MissingFacts = []string{}
	}
	return Verdict{
		Answered:     reply.Answered,
		Confidence:   reply.Confidence,
		MissingFacts: reply.MissingFacts,
	}, true
}

func (e *Evaluator) buildPrompt(query string, evidence []Evidence) string {
	var b strings.Builder
	b.WriteString("You judge whether collected web evidence answers a search query.\n")
	fmt.Fprintf(&b, "\nQuery: %s\n\nEvidence:\n", query)
	for _, ev := range evidence {
		fmt.Fprintf(&b, "\nSource: %s\n", ev.URL)
		for _, span := range ev.Spans {
			fmt.Fprintf(&b, "- %s\n", span.Text)
		}
	}
	b.WriteString("\nReply with strict JSON only: ")
	b.WriteString(`{"answered": <bool>, "confidence": <0.0-1.0>, "missingFacts": [<strings>]}`)
	b.WriteString("\nmissingFacts lists concrete facts the evidence does not establish, most important first.")
	return b.String()
}
