package dto

import "smartq/internal/domain"

// GenerateQuizRequest asks for one new question about a topic
// @Description Request body for question generation
type GenerateQuizRequest struct {
	Topic         string `json:"topic" example:"Go channels"`
	SystemPrompt  string `json:"system_prompt" example:"Target intermediate backend developers."`
	KnowledgeBase string `json:"knowledge_base,omitempty"`
}

// ToDomain converts the request body into the core request type
func (r GenerateQuizRequest) ToDomain() domain.GenerationRequest {
	return domain.GenerationRequest{
		Topic:         r.Topic,
		SystemPrompt:  r.SystemPrompt,
		KnowledgeBase: r.KnowledgeBase,
	}
}

// OptionDTO represents one answer choice
type OptionDTO struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
	Type      string `json:"type,omitempty" enums:"radio,checkbox"`
}

// SelectedOptionDTO represents an option picked by the user
type SelectedOptionDTO struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// QuizResponse represents a generated question in the API response
// @Description Generated quiz question
type QuizResponse struct {
	ID          string      `json:"id"`
	Question    string      `json:"question"`
	Options     []OptionDTO `json:"options"`
	Explanation string      `json:"explanation"`
}

// NewQuizResponse builds the response body from a generated question
func NewQuizResponse(q *domain.QuizQuestion) QuizResponse {
	options := make([]OptionDTO, len(q.Options))
	for i, o := range q.Options {
		options[i] = OptionDTO{Text: o.Text, IsCorrect: o.IsCorrect, Type: string(o.Kind())}
	}
	return QuizResponse{
		ID:          q.ID,
		Question:    q.Question,
		Options:     options,
		Explanation: q.Explanation,
	}
}

// EvaluateAnswerRequest carries the question and the user's answer
// @Description Request body for answer evaluation
type EvaluateAnswerRequest struct {
	QuestionID       string              `json:"question_id,omitempty"`
	Question         string              `json:"question"`
	Options          []OptionDTO         `json:"options"`
	SelectedOptions  []SelectedOptionDTO `json:"selected_options"`
	AdditionalAnswer string              `json:"additional_answer,omitempty"`
}

// ToDomain converts the request body into the core request type
func (r EvaluateAnswerRequest) ToDomain() domain.EvaluationRequest {
	options := make([]domain.Option, len(r.Options))
	for i, o := range r.Options {
		options[i] = domain.Option{Text: o.Text, IsCorrect: o.IsCorrect, Type: domain.OptionType(o.Type)}
	}
	selections := make([]domain.SelectedOption, len(r.SelectedOptions))
	for i, s := range r.SelectedOptions {
		selections[i] = domain.SelectedOption{Index: s.Index, Text: s.Text}
	}
	return domain.EvaluationRequest{
		QuestionID:          r.QuestionID,
		Question:            r.Question,
		Options:             options,
		Selections:          selections,
		SupplementaryAnswer: r.AdditionalAnswer,
	}
}

// ResourceDTO points the user to further learning material
type ResourceDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// EvaluationResponse represents the feedback in the API response
// @Description Evaluation feedback
type EvaluationResponse struct {
	IsCorrect           bool          `json:"isCorrect"`
	Feedback            string        `json:"feedback"`
	DetailedExplanation string        `json:"detailedExplanation"`
	AdditionalResources []ResourceDTO `json:"additionalResources,omitempty"`
}

// NewEvaluationResponse builds the response body from a feedback record
func NewEvaluationResponse(r *domain.FeedbackRecord) EvaluationResponse {
	var resources []ResourceDTO
	for _, res := range r.AdditionalResources {
		resources = append(resources, ResourceDTO{Title: res.Title, Description: res.Description})
	}
	return EvaluationResponse{
		IsCorrect:           r.IsCorrect,
		Feedback:            r.Feedback,
		DetailedExplanation: r.DetailedExplanation,
		AdditionalResources: resources,
	}
}

// HealthResponse reports liveness and the configured model
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Cache  string `json:"cache"`
}
