// Package nlu provides intent classification backed by LLM providers. The
// pipeline treats classifiers as optional and advisory: a classification
// error or low confidence never fails a request, it only changes routing.
package nlu

import "context"

// Result is a classified intent with the model's confidence in it.
type Result struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Well-known intents the pipeline routes on. Classifiers may return others;
// unrecognized intents route to the handler stage.
const (
	IntentGreeting   = "greeting"
	IntentFAQ        = "faq"
	IntentComparison = "comparison"
	IntentProduct    = "product"
	IntentOther      = "other"
)

// Classifier assigns an intent to a user query.
type Classifier interface {
	Classify(ctx context.Context, query, language string) (*Result, error)
}

const classifyPrompt = `You classify customer queries for a shopping assistant.
Respond with a JSON object: {"intent": "<intent>", "confidence": <0..1>}.
Valid intents: greeting, faq, comparison, product, other.
The query language is %q.`
