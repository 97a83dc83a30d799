package schema

import "github.com/google/jsonschema-go/jsonschema"

func nullableString(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Types: []string{"string", "null"}, Description: description}
}

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func intPtr(n int) *int {
	return &n
}

// Entries is the response schema for parsing a chunk into entries.
var Entries = MustNew("entries", &jsonschema.Schema{
	Type:        "array",
	Description: "The entries of the chunk in document order.",
	Items: &jsonschema.Schema{
		Type:        "object",
		Description: "Either a question/answer exchange or a procedural note.",
		Properties: map[string]*jsonschema.Schema{
			"sourceReference": nullableString("The source locator given in the prompt, e.g. 'WP80/06'."),
			"questioner":      nullableString("Who asks, e.g. 'Abg. Müller (SPD)'. Null for notes."),
			"question":        nullableString("The full question text. Null for notes."),
			"witness":         nullableString("Who answers, e.g. 'Zeuge Dr. Schmidt'. Null for notes."),
			"answer":          nullableString("The full answer text. Null for notes."),
			"note":            nullableString("A procedural note, e.g. '(Beifall bei der CDU)'. When set, the Q/A fields are null."),
		},
	},
})

// Analysis is the response schema for analysing one batch of entries.
var Analysis = MustNew("analysis", &jsonschema.Schema{
	Type:        "array",
	Description: "One analysis result per entry of the batch.",
	Items: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":            {Type: "number", Description: "The id of the analysed entry."},
			"coreStatement": str("A concise one-sentence summary of the answer."),
			"categoryTags":  str("Corpus ids, e.g. '5f, 7a', or 'Irrelevant / Prozedural'."),
			"justification": str("Why the content fits the categories, or why it is procedural."),
		},
		Required: []string{"id", "coreStatement", "categoryTags", "justification"},
	},
})

// Insights is the response schema for the key insights synthesis.
var Insights = MustNew("insights", &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"summary": str("A 2-4 paragraph Markdown summary of the key themes."),
		"insights": {
			Type:        "array",
			Description: "Exactly the top 3 insights.",
			MinItems:    intPtr(3),
			MaxItems:    intPtr(3),
			Items: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"title":       str("A short title."),
					"description": str("One paragraph explaining the insight."),
					"references":  str("Comma-separated entry numbers, e.g. '#5, #12'."),
				},
				Required: []string{"title", "description", "references"},
			},
		},
	},
	Required: []string{"summary", "insights"},
})
