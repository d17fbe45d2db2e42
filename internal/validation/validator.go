package validation

import (
	stderrors "errors"
	"fmt"
	"strings"

	"smartq/internal/domain"
	"smartq/internal/util"
)

const (
	maxTopicLength         = 200
	maxPromptLength        = 4000
	maxKnowledgeBaseLength = 20000
	maxAnswerLength        = 2000
)

// Validator checks caller preconditions before any model call is made.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerationRequest validates a question generation request
func (v *Validator) ValidateGenerationRequest(req domain.GenerationRequest) error {
	var errors domain.InputErrors

	if strings.TrimSpace(req.Topic) == "" {
		errors = append(errors, domain.NewInputError("topic", "topic is required"))
	} else if len(req.Topic) > maxTopicLength {
		errors = append(errors, outOfRange("topic", len(req.Topic), maxTopicLength))
	}

	if strings.TrimSpace(req.SystemPrompt) == "" {
		errors = append(errors, domain.NewInputError("system_prompt", "system prompt is required"))
	} else if len(req.SystemPrompt) > maxPromptLength {
		errors = append(errors, outOfRange("system_prompt", len(req.SystemPrompt), maxPromptLength))
	}

	if len(req.KnowledgeBase) > maxKnowledgeBaseLength {
		errors = append(errors, outOfRange("knowledge_base", len(req.KnowledgeBase), maxKnowledgeBaseLength))
	}

	return orNil(errors)
}

// ValidateEvaluationRequest validates an answer evaluation request,
// including the integrity of each selection against the option list.
func (v *Validator) ValidateEvaluationRequest(req domain.EvaluationRequest) error {
	var errors domain.InputErrors

	if req.QuestionID != "" && !util.IsULID(req.QuestionID) {
		errors = append(errors, domain.NewInputError("question_id", "question_id is not a valid ULID"))
	}

	if strings.TrimSpace(req.Question) == "" {
		errors = append(errors, domain.NewInputError("question", "question is required"))
	}

	if len(req.SupplementaryAnswer) > maxAnswerLength {
		errors = append(errors, outOfRange("additional_answer", len(req.SupplementaryAnswer), maxAnswerLength))
	}

	if err := domain.CheckOptionSet(req.Options); err != nil {
		field, msg := "options", err.Error()
		var ve *domain.ValidationError
		if stderrors.As(err, &ve) {
			field, msg = ve.Field, ve.Message
		}
		errors = append(errors, domain.NewInputError(field, msg))
		// Selections cannot be checked against a broken option list.
		return orNil(errors)
	}

	if len(req.Selections) == 0 {
		errors = append(errors, domain.NewInputError("selected_options", "at least one option must be selected"))
		return orNil(errors)
	}

	seen := make(map[int]bool, len(req.Selections))
	for i, sel := range req.Selections {
		field := fmt.Sprintf("selected_options[%d]", i)
		switch {
		case sel.Index < 0 || sel.Index >= len(req.Options):
			errors = append(errors, domain.NewInputError(field+".index",
				fmt.Sprintf("index %d is out of range [0, %d)", sel.Index, len(req.Options))))
		case sel.Text != req.Options[sel.Index].Text:
			errors = append(errors, domain.NewInputError(field+".text",
				fmt.Sprintf("text does not match option %d", sel.Index)))
		case seen[sel.Index]:
			errors = append(errors, domain.NewInputError(field+".index",
				fmt.Sprintf("option %d is selected more than once", sel.Index)))
		}
		seen[sel.Index] = true
	}

	return orNil(errors)
}

func outOfRange(field string, length, max int) *domain.InputError {
	return domain.NewInputError(field, fmt.Sprintf("length %d exceeds maximum of %d", length, max))
}

// orNil avoids returning a typed nil inside a non-nil error interface.
func orNil(errs domain.InputErrors) error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
