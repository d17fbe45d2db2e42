// Package schema holds the declarative field contracts of the two payloads
// the model is asked to produce. A Descriptor is both the output format sent
// to the model and the contract its answer is validated against.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Fields is a decoded, validated model payload.
type Fields map[string]any

// FieldType is the JSON type of a field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeBoolean FieldType = "boolean"
	TypeNumber  FieldType = "number"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field is a single entry of a Descriptor.
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string
	Enum        []string
	Default     any

	// Items describes the elements of an array of objects.
	Items    *Descriptor
	MinItems int
	MaxItems int
}

// Descriptor is a read-only object contract. Descriptors are defined at
// package init and shared by all requests.
type Descriptor struct {
	Name        string
	Description string
	Fields      []Field

	once       sync.Once
	compiled   *jsonschema.Schema
	compileErr error
}

// Field returns the contract of the named field.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required returns the names of required fields in declaration order.
func (d *Descriptor) Required() []string {
	var names []string
	for _, f := range d.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// JSONSchema renders the descriptor as a JSON Schema document.
func (d *Descriptor) JSONSchema() map[string]any {
	props := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		props[f.Name] = f.jsonSchema()
	}
	doc := map[string]any{
		"type":       string(TypeObject),
		"properties": props,
	}
	if req := d.Required(); len(req) > 0 {
		doc["required"] = req
	}
	return doc
}

func (f Field) jsonSchema() map[string]any {
	prop := map[string]any{"type": string(f.Type)}
	if f.Description != "" {
		prop["description"] = f.Description
	}
	if len(f.Enum) > 0 {
		prop["enum"] = f.Enum
	}
	if f.Default != nil {
		prop["default"] = f.Default
	}
	if f.Type == TypeArray {
		if f.Items != nil {
			prop["items"] = f.Items.JSONSchema()
		}
		if f.MinItems > 0 {
			prop["minItems"] = f.MinItems
		}
		if f.MaxItems > 0 {
			prop["maxItems"] = f.MaxItems
		}
	}
	return prop
}

// MarshalJSON lets a Descriptor be embedded directly as a schema object in
// request bodies.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.JSONSchema())
}

// Validate checks a decoded JSON value against the compiled schema.
func (d *Descriptor) Validate(v any) error {
	compiled, err := d.compile()
	if err != nil {
		return err
	}
	return compiled.Validate(v)
}

func (d *Descriptor) compile() (*jsonschema.Schema, error) {
	d.once.Do(func() {
		// The compiler wants plain decoded JSON ([]any, not []string).
		raw, err := json.Marshal(d.JSONSchema())
		if err != nil {
			d.compileErr = fmt.Errorf("marshal schema %q: %w", d.Name, err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			d.compileErr = fmt.Errorf("parse schema %q: %w", d.Name, err)
			return
		}

		c := jsonschema.NewCompiler()
		url := fmt.Sprintf("schema://%s.json", d.Name)
		if err := c.AddResource(url, doc); err != nil {
			d.compileErr = fmt.Errorf("add schema %q: %w", d.Name, err)
			return
		}
		d.compiled, d.compileErr = c.Compile(url)
	})
	return d.compiled, d.compileErr
}

// Location returns the path of the innermost schema violation in err, in
// the same notation as hand-written checks (options[1].isCorrect), or ""
// when err is not a schema violation or concerns the whole document.
func Location(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return ""
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return FieldPath(ve.InstanceLocation)
}

// FieldPath renders JSON pointer tokens as a field path: array indices in
// brackets, property names joined by dots.
func FieldPath(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		if _, err := strconv.Atoi(tok); err == nil {
			b.WriteString("[" + tok + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}
