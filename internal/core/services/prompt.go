package services

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
)

// renderPrompt loads the named template and executes it with data.
func renderPrompt(store driven.PromptStore, name string, data any) (string, error) {
	text, err := store.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return b.String(), nil
}
