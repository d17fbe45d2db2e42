// Package normalize turns the raw text returned by the model into a
// validated field set, or rejects it with a typed domain.ValidationError.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"smartq/internal/domain"
	"smartq/internal/schema"
)

// Normalize decodes raw and checks it against desc. raw may be a string,
// []byte, json.RawMessage or an already decoded JSON object.
//
// The input is never modified and nothing is filled in: a payload that does
// not satisfy desc is rejected.
func Normalize(raw any, desc *schema.Descriptor) (schema.Fields, error) {
	obj, err := decode(raw)
	if err != nil {
		return nil, err
	}
	dropNullOptionals(obj, desc)

	for _, name := range desc.Required() {
		if _, ok := obj[name]; !ok {
			return nil, domain.NewValidationError(domain.MissingField, name, "required field is absent", nil)
		}
	}

	for _, f := range desc.Fields {
		v, ok := obj[f.Name]
		if !ok {
			continue
		}
		if err := checkField(f, v); err != nil {
			return nil, err
		}
	}

	switch desc {
	case schema.Quiz:
		err = checkQuiz(obj)
	case schema.Evaluation:
		err = checkEvaluation(obj)
	}
	if err != nil {
		return nil, err
	}

	if err := desc.Validate(map[string]any(obj)); err != nil {
		return nil, domain.NewValidationError(domain.TypeMismatch, schema.Location(err), "payload does not conform to schema", err)
	}

	return obj, nil
}

// decode always produces a fresh map so the caller's value is left alone.
func decode(raw any) (schema.Fields, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case map[string]any, schema.Fields:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, domain.NewValidationError(domain.MalformedJSON, "", "structured payload cannot be encoded", err)
		}
		data = b
	case nil:
		return nil, domain.NewValidationError(domain.MalformedJSON, "", "empty response", nil)
	default:
		return nil, domain.NewValidationError(domain.MalformedJSON, "", fmt.Sprintf("unsupported payload type %T", raw), nil)
	}

	text := clean(string(data))
	if text == "" {
		return nil, domain.NewValidationError(domain.MalformedJSON, "", "empty response", nil)
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, domain.NewValidationError(domain.MalformedJSON, "", "response is not valid JSON", err)
	}
	if dec.More() {
		return nil, domain.NewValidationError(domain.MalformedJSON, "", "trailing data after JSON document", nil)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, domain.NewValidationError(domain.MalformedJSON, "", fmt.Sprintf("expected a JSON object, got %s", jsonKind(decoded)), nil)
	}
	return obj, nil
}

// clean strips wrappers that models put around otherwise valid JSON: a
// <think> block and a markdown code fence.
func clean(s string) string {
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "<think>"); start != -1 {
		if end := strings.Index(s, "</think>"); end > start {
			s = strings.TrimSpace(s[:start] + s[end+len("</think>"):])
		}
	}

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// dropNullOptionals removes optional fields set to null, at any depth
// described by desc, so that they read as absent. obj is the decoded copy.
func dropNullOptionals(obj map[string]any, desc *schema.Descriptor) {
	for _, f := range desc.Fields {
		v, ok := obj[f.Name]
		if !ok {
			continue
		}
		if v == nil && !f.Required {
			delete(obj, f.Name)
			continue
		}
		if f.Items == nil {
			continue
		}
		items, _ := v.([]any)
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				dropNullOptionals(m, f.Items)
			}
		}
	}
}

func checkField(f schema.Field, v any) error {
	if kind := jsonKind(v); kind != string(f.Type) {
		return domain.NewValidationError(domain.TypeMismatch, f.Name,
			fmt.Sprintf("expected %s, got %s", f.Type, kind), nil)
	}
	if len(f.Enum) > 0 {
		s, _ := v.(string)
		for _, allowed := range f.Enum {
			if s == allowed {
				return nil
			}
		}
		return domain.NewValidationError(domain.TypeMismatch, f.Name,
			fmt.Sprintf("value %q is not one of %v", s, f.Enum), nil)
	}
	return nil
}

func checkQuiz(obj schema.Fields) error {
	if err := nonEmpty(obj, "question"); err != nil {
		return err
	}

	items := obj["options"].([]any)
	if len(items) < schema.MinOptions || len(items) > schema.MaxOptions {
		return domain.NewValidationError(domain.InvalidOptionSet, "options",
			fmt.Sprintf("expected %d to %d options, got %d", schema.MinOptions, schema.MaxOptions, len(items)), nil)
	}

	options := make([]domain.Option, len(items))
	for i, item := range items {
		opt, err := toOption(i, item)
		if err != nil {
			return err
		}
		options[i] = opt
	}
	return domain.CheckOptionSet(options)
}

func toOption(i int, item any) (domain.Option, error) {
	field := func(name string) string { return fmt.Sprintf("options[%d].%s", i, name) }

	m, ok := item.(map[string]any)
	if !ok {
		return domain.Option{}, domain.NewValidationError(domain.TypeMismatch, fmt.Sprintf("options[%d]", i),
			fmt.Sprintf("expected object, got %s", jsonKind(item)), nil)
	}

	textVal, ok := m["text"]
	if !ok {
		return domain.Option{}, domain.NewValidationError(domain.MissingField, field("text"), "required field is absent", nil)
	}
	text, ok := textVal.(string)
	if !ok {
		return domain.Option{}, domain.NewValidationError(domain.TypeMismatch, field("text"), "expected string", nil)
	}

	correctVal, ok := m["isCorrect"]
	if !ok {
		return domain.Option{}, domain.NewValidationError(domain.MissingField, field("isCorrect"), "required field is absent", nil)
	}
	correct, ok := correctVal.(bool)
	if !ok {
		return domain.Option{}, domain.NewValidationError(domain.TypeMismatch, field("isCorrect"), "expected boolean", nil)
	}

	opt := domain.Option{Text: text, IsCorrect: correct}
	if typeVal, ok := m["type"]; ok {
		kind, ok := typeVal.(string)
		if !ok {
			return domain.Option{}, domain.NewValidationError(domain.TypeMismatch, field("type"), "expected string", nil)
		}
		opt.Type = domain.OptionType(kind)
	}
	return opt, nil
}

func checkEvaluation(obj schema.Fields) error {
	if _, ok := obj["isCorrect"].(bool); !ok {
		return domain.NewValidationError(domain.TypeMismatch, "isCorrect", "expected boolean", nil)
	}
	if err := nonEmpty(obj, "feedback"); err != nil {
		return err
	}
	return nonEmpty(obj, "detailedExplanation")
}

func nonEmpty(obj schema.Fields, name string) error {
	s, ok := obj[name].(string)
	if !ok {
		return domain.NewValidationError(domain.TypeMismatch, name, "expected string", nil)
	}
	if strings.TrimSpace(s) == "" {
		return domain.NewValidationError(domain.MissingField, name, "field is empty", nil)
	}
	return nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
