package prompts

import (
	"github.com/google/jsonschema-go/jsonschema"
)

func stringSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string"}
}

func minOne() *int {
	n := 1
	return &n
}

func stringArraySchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: stringSchema()}
}

// NotesSchema returns the JSON schema of the notes output contract. The same
// schema is sent as structured-output format and used to validate replies, so
// it only requires what the rest of the system cannot do without: a subject,
// modules or topics, at least one chapter per module and a name per chapter.
func NotesSchema() *jsonschema.Schema {
	table := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"title":   stringSchema(),
			"headers": stringArraySchema(),
			"rows": {
				Type:  "array",
				Items: stringArraySchema(),
			},
		},
	}

	chapter := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"name"},
		Properties: map[string]*jsonschema.Schema{
			"name":                  {Type: "string", MinLength: minOne()},
			"description":           stringSchema(),
			"definition":            stringSchema(),
			"keyPoints":             stringArraySchema(),
			"applications":          stringSchema(),
			"formulas":              stringArraySchema(),
			"tables":                {Type: "array", Items: table},
			"importantConcepts":     stringArraySchema(),
			"commonMistakes":        stringArraySchema(),
			"studyTips":             stringArraySchema(),
			"previousYearQuestions": stringArraySchema(),
			"relatedTopics":         stringArraySchema(),
			"isImportant":           {Type: "boolean"},
		},
	}

	module := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"chapters"},
		Properties: map[string]*jsonschema.Schema{
			"name":        stringSchema(),
			"description": stringSchema(),
			"chapters": {
				Type:     "array",
				MinItems: minOne(),
				Items:    chapter,
			},
		},
	}

	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"subject"},
		Properties: map[string]*jsonschema.Schema{
			"subject": stringSchema(),
			// Syllabi print course codes as "CS101" or plain 101.
			"courseCode": {Types: []string{"string", "number"}},
			"modules": {
				Type:     "array",
				MinItems: minOne(),
				Items:    module,
			},
			"topics": {
				Type:     "array",
				MinItems: minOne(),
				Items:    stringSchema(),
			},
		},
		AnyOf: []*jsonschema.Schema{
			{Required: []string{"modules"}},
			{Required: []string{"topics"}},
		},
	}
}
