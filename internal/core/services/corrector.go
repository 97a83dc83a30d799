package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/core/schema"
	"github.com/custodia-labs/protokoll/internal/logger"
)

type outcomeKind int

const (
	outcomeParsed outcomeKind = iota
	outcomeNeedsRepair
	outcomeFailed
)

// parseOutcome is the result of decoding one model reply.
// Exactly one of value, raw or err is meaningful, selected by kind.
type parseOutcome struct {
	kind  outcomeKind
	value any
	raw   string
	err   error
}

func parsed(v any) parseOutcome           { return parseOutcome{kind: outcomeParsed, value: v} }
func needsRepair(raw string) parseOutcome { return parseOutcome{kind: outcomeNeedsRepair, raw: raw} }
func failed(err error) parseOutcome       { return parseOutcome{kind: outcomeFailed, err: err} }

var (
	openingFence = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// stripFences removes a leading and a trailing Markdown code fence. Each
// side is stripped on its own so cut-off replies lose their opening fence.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = openingFence.ReplaceAllString(text, "")
	text = closingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// decodeReply parses a reply. It checks syntax only; callers validate shape.
func decodeReply(text string) parseOutcome {
	cleaned := stripFences(text)
	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return needsRepair(cleaned)
	}
	return parsed(v)
}

// StructuredCorrector obtains JSON from the model, repairing malformed
// replies with one extra call.
type StructuredCorrector struct {
	invoker *ModelInvoker
	prompts driven.PromptStore
	log     logger.Scoped
}

// NewStructuredCorrector creates a corrector.
func NewStructuredCorrector(invoker *ModelInvoker, prompts driven.PromptStore) *StructuredCorrector {
	return &StructuredCorrector{
		invoker: invoker,
		prompts: prompts,
		log:     logger.For("corrector"),
	}
}

// InvokeStructured sends prompt constrained by sch and returns the decoded
// JSON value (map[string]any, []any, ...).
//
// Errors from the first model call are returned unchanged. A reply that
// is still malformed after the repair call yields domain.ErrInvalidAIOutput.
func (c *StructuredCorrector) InvokeStructured(
	ctx context.Context, modelID, prompt string, sch *schema.Schema,
) (any, error) {
	cfg := driven.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   sch.JSON(),
		SchemaName:       sch.Name(),
	}

	text, err := c.invoker.Invoke(ctx, modelID, prompt, cfg)
	if err != nil {
		return nil, err
	}

	outcome := decodeReply(text)
	if outcome.kind == outcomeNeedsRepair {
		c.log.Warn("malformed %s reply (%d bytes), attempting repair", sch.Name(), len(outcome.raw))
		outcome = c.repair(ctx, modelID, outcome.raw, sch, cfg)
	}

	switch outcome.kind {
	case outcomeParsed:
		return outcome.value, nil
	case outcomeFailed:
		c.log.Error("repair of %s reply failed: %v", sch.Name(), outcome.err)
		return nil, outcome.err
	default:
		return nil, fmt.Errorf("%w: unexpected parse state", domain.ErrInvalidAIOutput)
	}
}

func (c *StructuredCorrector) repair(
	ctx context.Context, modelID, broken string, sch *schema.Schema, cfg driven.GenerationConfig,
) parseOutcome {
	prompt, err := renderPrompt(c.prompts, driven.PromptRepairJSON, struct {
		Broken string
		Schema string
	}{Broken: broken, Schema: sch.String()})
	if err != nil {
		return failed(fmt.Errorf("%w: %w", domain.ErrInvalidAIOutput, err))
	}

	text, err := c.invoker.Invoke(ctx, modelID, prompt, cfg)
	if err != nil {
		return failed(fmt.Errorf("%w: repair call: %w", domain.ErrInvalidAIOutput, err))
	}

	outcome := decodeReply(text)
	if outcome.kind == outcomeNeedsRepair {
		return failed(fmt.Errorf("%w: repaired %s reply is still not valid JSON", domain.ErrInvalidAIOutput, sch.Name()))
	}
	c.log.Info("repaired %s reply", sch.Name())
	return outcome
}

// decodeInto converts a decoded JSON value into a typed destination.
func decodeInto(v, dst any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: field %s: %v", domain.ErrInvalidAIOutput, typeErr.Field, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidAIOutput, err)
	}
	return nil
}
