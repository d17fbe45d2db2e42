package domain

import (
	"fmt"
	"strings"

	"smartq/internal/schema"
	"smartq/internal/util"
)

// OptionType determines whether an option belongs to a single or multiple
// selection question.
type OptionType string

const (
	OptionRadio    OptionType = schema.OptionTypeRadio
	OptionCheckbox OptionType = schema.OptionTypeCheckbox
)

// Option is one answer choice of a quiz question.
type Option struct {
	Text      string     `json:"text"`
	IsCorrect bool       `json:"isCorrect"`
	Type      OptionType `json:"type,omitempty"`
}

// Kind returns the option type, defaulting to radio.
func (o Option) Kind() OptionType {
	if o.Type == "" {
		return OptionRadio
	}
	return o.Type
}

// QuizQuestion is a generated question. It is only built through
// NewQuizQuestion and never mutated afterwards.
type QuizQuestion struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation"`
}

// NewQuizQuestion creates a question with a fresh identifier after checking
// the option invariants.
func NewQuizQuestion(question string, options []Option, explanation string) (*QuizQuestion, error) {
	if strings.TrimSpace(question) == "" {
		return nil, NewValidationError(MissingField, "question", "question text is empty", nil)
	}
	if err := CheckOptionSet(options); err != nil {
		return nil, err
	}

	opts := make([]Option, len(options))
	for i, o := range options {
		o.Type = o.Kind()
		opts[i] = o
	}

	return &QuizQuestion{
		ID:          util.NewULID(),
		Question:    question,
		Options:     opts,
		Explanation: explanation,
	}, nil
}

// SingleSelect reports whether every option is a radio option.
func SingleSelect(options []Option) bool {
	for _, o := range options {
		if o.Kind() != OptionRadio {
			return false
		}
	}
	return true
}

// CorrectIndices returns the positions of the correct options.
func CorrectIndices(options []Option) []int {
	var idx []int
	for i, o := range options {
		if o.IsCorrect {
			idx = append(idx, i)
		}
	}
	return idx
}

// CheckOptionSet enforces the option invariants shared by generated and
// submitted questions: at least two non-empty options, at least one correct
// option, and exactly one correct option when all options are radio.
func CheckOptionSet(options []Option) error {
	if len(options) < schema.MinOptions {
		return NewValidationError(InvalidOptionSet, "options",
			fmt.Sprintf("at least %d options are required, got %d", schema.MinOptions, len(options)), nil)
	}
	for i, o := range options {
		if strings.TrimSpace(o.Text) == "" {
			return NewValidationError(InvalidOptionSet, fmt.Sprintf("options[%d].text", i), "option text is empty", nil)
		}
		if k := o.Kind(); k != OptionRadio && k != OptionCheckbox {
			return NewValidationError(InvalidOptionSet, fmt.Sprintf("options[%d].type", i),
				fmt.Sprintf("unknown option type %q", k), nil)
		}
	}

	correct := len(CorrectIndices(options))
	if correct == 0 {
		return NewValidationError(InvalidOptionSet, "options", "no option is marked as correct", nil)
	}
	if SingleSelect(options) && correct != 1 {
		return NewValidationError(InvalidOptionSet, "options",
			fmt.Sprintf("single selection question must have exactly one correct option, got %d", correct), nil)
	}
	return nil
}

// SelectedOption is an option picked by the user. Text must match the option
// text at Index.
type SelectedOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// GenerationRequest asks for one new question.
type GenerationRequest struct {
	Topic         string
	SystemPrompt  string
	KnowledgeBase string
}

// EvaluationRequest carries a user's answer to a previously generated
// question. The question is supplied by the caller; nothing is looked up.
type EvaluationRequest struct {
	QuestionID          string
	Question            string
	Options             []Option
	Selections          []SelectedOption
	SupplementaryAnswer string
}

// SelectedIndices returns the option positions the user picked.
func (r EvaluationRequest) SelectedIndices() []int {
	idx := make([]int, len(r.Selections))
	for i, s := range r.Selections {
		idx[i] = s.Index
	}
	return idx
}

// AdditionalResource points the user to further learning material.
type AdditionalResource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FeedbackRecord is the evaluation result. IsCorrect always carries the
// locally computed verdict.
type FeedbackRecord struct {
	IsCorrect           bool                 `json:"isCorrect"`
	Feedback            string               `json:"feedback"`
	DetailedExplanation string               `json:"detailedExplanation"`
	AdditionalResources []AdditionalResource `json:"additionalResources,omitempty"`
}
