package schema

const (
	// MinOptions and MaxOptions bound the option list of a generated question.
	MinOptions = 2
	MaxOptions = 5

	OptionTypeRadio    = "radio"
	OptionTypeCheckbox = "checkbox"
)

var optionItem = &Descriptor{
	Name: "option",
	Fields: []Field{
		{Name: "text", Type: TypeString, Required: true, Description: "Option text"},
		{Name: "isCorrect", Type: TypeBoolean, Required: true, Description: "Whether this option is correct"},
		{
			Name:        "type",
			Type:        TypeString,
			Description: "Option kind: radio for single selection, checkbox for multiple selection",
			Enum:        []string{OptionTypeRadio, OptionTypeCheckbox},
			Default:     OptionTypeRadio,
		},
	},
}

var resourceItem = &Descriptor{
	Name: "resource",
	Fields: []Field{
		{Name: "title", Type: TypeString, Required: true},
		{Name: "description", Type: TypeString, Required: true},
	},
}

// Quiz is the contract of a generated quiz question.
var Quiz = &Descriptor{
	Name:        "quiz_question",
	Description: "A multiple choice quiz question with its options and explanation",
	Fields: []Field{
		{Name: "question", Type: TypeString, Required: true, Description: "Question text"},
		{
			Name:        "options",
			Type:        TypeArray,
			Required:    true,
			Description: "Answer options of the question",
			Items:       optionItem,
			MinItems:    MinOptions,
			MaxItems:    MaxOptions,
		},
		{Name: "explanation", Type: TypeString, Required: true, Description: "Explanation shown after answering"},
	},
}

// Evaluation is the contract of the feedback produced for an answer.
var Evaluation = &Descriptor{
	Name:        "evaluation_feedback",
	Description: "Feedback on a user's answer to a quiz question",
	Fields: []Field{
		{Name: "isCorrect", Type: TypeBoolean, Required: true, Description: "Whether the user's answer is correct"},
		{Name: "feedback", Type: TypeString, Required: true, Description: "Short feedback message"},
		{Name: "detailedExplanation", Type: TypeString, Required: true, Description: "Detailed explanation and background"},
		{
			Name:        "additionalResources",
			Type:        TypeArray,
			Description: "Optional further learning resources",
			Items:       resourceItem,
		},
	},
}
