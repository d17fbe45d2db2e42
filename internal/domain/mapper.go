package domain

import (
	"encoding/json"

	"smartq/internal/schema"
)

type quizFields struct {
	Question    string   `json:"question"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation"`
}

type feedbackFields struct {
	Feedback            string               `json:"feedback"`
	DetailedExplanation string               `json:"detailedExplanation"`
	AdditionalResources []AdditionalResource `json:"additionalResources"`
}

// ToQuizQuestion builds a QuizQuestion with a fresh identifier from
// normalized quiz fields.
func ToQuizQuestion(fields schema.Fields) (*QuizQuestion, error) {
	var qf quizFields
	if err := decodeFields(fields, &qf); err != nil {
		return nil, err
	}
	return NewQuizQuestion(qf.Question, qf.Options, qf.Explanation)
}

// ToFeedbackRecord builds a FeedbackRecord from normalized evaluation fields.
// Whatever the model reported as isCorrect is replaced by verdict.
func ToFeedbackRecord(fields schema.Fields, verdict bool) (*FeedbackRecord, error) {
	var ff feedbackFields
	if err := decodeFields(fields, &ff); err != nil {
		return nil, err
	}
	return &FeedbackRecord{
		IsCorrect:           verdict,
		Feedback:            ff.Feedback,
		DetailedExplanation: ff.DetailedExplanation,
		AdditionalResources: ff.AdditionalResources,
	}, nil
}

func decodeFields(fields schema.Fields, out any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return NewValidationError(TypeMismatch, "", "fields cannot be encoded", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewValidationError(TypeMismatch, "", "fields do not match the domain shape", err)
	}
	return nil
}
