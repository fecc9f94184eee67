package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/apmatch/invoice-matcher/internal/llm"
)

var _ llm.StructuredExtractor = (*Client)(nil)

// ExtractDocument implements llm.StructuredExtractor over chat/completions.
// One request, no application-level retries (transport retries belong to the
// SDK), and no error return: every failure mode collapses into a Result with
// a nil Doc and an Outcome saying which stage gave up.
func (c *Client) ExtractDocument(ctx context.Context, req llm.ExtractRequest) llm.Result {
	rid := uuid.New().String()
	start := time.Now()

	if !c.cfg.Enabled {
		c.log.Info("llm.extract.disabled", "req_id", rid)
		return llm.Result{Outcome: llm.OutcomeDisabled}
	}

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"doc_type_hint", string(req.DocTypeHint),
		"default_currency", req.DefaultCurrency,
	)

	schema := llm.BuildDocumentJSONSchema()
	sys := llm.BuildSystemPrompt(req)
	user := llm.BuildUserPrompt(req, c.cfg.MaxInputChars)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(sys),
			openai.SystemMessage("JSON Schema:\n" + mustJSON(schema)),
			openai.UserMessage(user + "\n\nReturn ONLY JSON that matches the provided schema."),
		},
		Temperature: openai.Float(c.cfg.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		c.log.Error("llm.extract.transport_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{Outcome: llm.OutcomeTransport, Err: err}
	}

	if len(resp.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{Outcome: llm.OutcomeDecode, Err: fmt.Errorf("no choices in response")}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	raw, err := llm.ExtractJSONObject(content)
	if err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{Outcome: llm.OutcomeDecode, Raw: []byte(content), Err: err}
	}

	cleaned, _, err := llm.NormalizeDocumentJSON(raw, c.log)
	if err != nil {
		c.log.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{Outcome: llm.OutcomeDecode, Raw: raw, Err: err}
	}

	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{Outcome: llm.OutcomeSchema, Raw: cleaned, Err: err}
	}

	doc, err := llm.DecodeDocument(cleaned)
	if err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{Outcome: llm.OutcomeSchema, Raw: cleaned, Err: err}
	}
	if doc.Currency == "" {
		if cur := strings.ToUpper(strings.TrimSpace(req.DefaultCurrency)); cur != "" {
			doc.Currency = cur
		} else {
			doc.Currency = "INR"
		}
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"doc_type", string(doc.DocType),
		"doc_number", doc.DocNumber,
		"vendor", doc.VendorName,
		"items", len(doc.Items),
		"currency", doc.Currency,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Result{Doc: doc, Outcome: llm.OutcomeOK, Raw: cleaned}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
