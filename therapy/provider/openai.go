// Package provider wraps the OpenAI Responses API for the therapy bot.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/arhammxo/eli/therapy"
)

// Client issues one Responses API call per generated reply.
type Client struct {
	oa          *openai.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      *slog.Logger
}

func New(apiKey, model string, maxTokens int64, temperature float64, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	oa := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		oa:          &oa,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Generate sends the system instructions plus a single user-role message and
// returns the completion text.
func (c *Client) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	if c.oa == nil {
		return "", errors.New("provider: client is nil")
	}
	if c.model == "" {
		return "", errors.New("provider: model is empty")
	}

	c.logger.Debug("generating response", "model", c.model, "prompt_len", len(prompt))

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(c.maxTokens),
		Temperature:     openai.Float(c.temperature),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := callWithRetry(ctx, c.oa, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

var sessionNotesSchema = generateSchema[therapy.SessionNotes]()

// GenerateNotes asks for strict-JSON-schema session notes over a finished
// transcript.
func (c *Client) GenerateNotes(ctx context.Context, instructions, transcript string) (therapy.SessionNotes, error) {
	if c.oa == nil {
		return therapy.SessionNotes{}, errors.New("provider: client is nil")
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(c.maxTokens),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(transcript, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "SessionNotes",
					Schema:      sessionNotesSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Therapy session notes JSON"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := callWithRetry(ctx, c.oa, params)
	if err != nil {
		return therapy.SessionNotes{}, err
	}

	var notes therapy.SessionNotes
	if err := decodeModelJSON(resp.OutputText(), &notes); err != nil {
		return therapy.SessionNotes{}, fmt.Errorf("unmarshal session notes: %w", err)
	}
	notes.Summary = strings.TrimSpace(notes.Summary)
	notes.Mood = strings.TrimSpace(notes.Mood)
	return notes, nil
}

// callWithRetry retries rate-limit and server errors with a short fixed
// schedule; the session is interactive, so waits stay in the low seconds.
func callWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second}
	serverErrorWaitTimes := []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err != nil {
			var wait time.Duration
			if isRateLimitError(err) && attempt < maxRetries-1 {
				wait = rateLimitWaitTimes[attempt]
			} else if isServerError(err) && attempt < maxRetries-1 {
				wait = serverErrorWaitTimes[attempt]
			} else {
				return nil, err
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("failed after %d attempts due to OpenAI API issues", maxRetries)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// decodeModelJSON unmarshals JSON from a model response, tolerating responses
// that wrap the JSON object in extra text.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}

	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}

// ---- Structured output schema helpers ----

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	ensureOpenAICompliance(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]interface{}, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

// ensureOpenAICompliance forces the strict-schema shape the Responses API
// requires: objects close additionalProperties and mark every property
// required, recursively.
func ensureOpenAICompliance(schema map[string]interface{}) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
			var requiredFields []string
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]interface{}); ok {
				ensureOpenAICompliance(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]interface{}); ok {
		ensureOpenAICompliance(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]interface{}); ok {
		ensureOpenAICompliance(additionalProps)
	}
}
