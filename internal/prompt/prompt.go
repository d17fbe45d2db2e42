// Package prompt renders generation and evaluation requests into the single
// prompt string sent to the model. All functions are pure.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"smartq/internal/domain"
	"smartq/internal/schema"
)

const none = "none"

const generationTemplate = `You are a quiz authoring assistant for educational use.
Create exactly one question about the topic "%s".

%s

Knowledge base:
%s

Write a single choice question answered with radio buttons.
Mark exactly one option as correct.
Set the type of every option to "radio".

Follow this output format strictly:
- question: the question text
- options: the list of options, each with text, isCorrect and type
- explanation: a detailed explanation of the answer
`

const evaluationTemplate = `You are a quiz evaluation assistant for educational use.
Give the user detailed feedback on their answer.

Question:
%s

Options:
%s
User selection:
%s
Additional answer or question from the user:
%s

Verdict:
The answer is %s. This verdict has already been decided and is final.
Do not judge the answer again; explain why it is %s.
Set isCorrect to %t.

Follow this output format strictly:
- isCorrect: whether the user's answer is correct (boolean)
- feedback: a short feedback message
- detailedExplanation: a detailed explanation of the concepts involved
- additionalResources: further learning resources (optional)
`

// BuildGenerationPrompt renders a request for one new quiz question.
// Callers must reject an empty topic or system prompt beforehand.
func BuildGenerationPrompt(topic, systemInstructions, knowledgeBase string) string {
	return fmt.Sprintf(generationTemplate,
		strings.TrimSpace(topic),
		strings.TrimSpace(systemInstructions),
		orNone(knowledgeBase),
	)
}

// BuildEvaluationPrompt renders a request for feedback on an answer. The
// locally computed verdict is embedded as ground truth; the model is only
// asked to explain it.
func BuildEvaluationPrompt(question string, options []domain.Option, selections []domain.SelectedOption, supplementaryAnswer string, verdict bool) string {
	word := "incorrect"
	if verdict {
		word = "correct"
	}
	return fmt.Sprintf(evaluationTemplate,
		strings.TrimSpace(question),
		renderOptions(options),
		renderSelections(selections),
		orNone(supplementaryAnswer),
		word, word, verdict,
	)
}

// EmbedSchema appends the JSON Schema of desc to prompt, for endpoints that
// cannot take a schema as the requested output format.
func EmbedSchema(prompt string, desc *schema.Descriptor) string {
	if desc == nil {
		return prompt + "\nRespond with a single JSON object only.\n"
	}
	raw, err := json.MarshalIndent(desc.JSONSchema(), "", "  ")
	if err != nil {
		return prompt
	}
	return fmt.Sprintf("%s\nRespond with a single JSON object that conforms to this JSON Schema:\n%s\n", prompt, raw)
}

func renderOptions(options []domain.Option) string {
	var b strings.Builder
	for i, o := range options {
		mark := "incorrect"
		if o.IsCorrect {
			mark = "correct"
		}
		fmt.Fprintf(&b, "%d. %s (%s, %s)\n", i, o.Text, mark, o.Kind())
	}
	return b.String()
}

func renderSelections(selections []domain.SelectedOption) string {
	var b strings.Builder
	for _, s := range selections {
		fmt.Fprintf(&b, "%d. %s\n", s.Index, s.Text)
	}
	return b.String()
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return none
	}
	return s
}
