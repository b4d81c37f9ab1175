// Package ai hands responses the rule-based classifier could not categorize
// to a chat completion model.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/internal/observability"
	"github.com/hrygo/spotmatch/server/service/intent"
	"github.com/hrygo/spotmatch/server/service/negotiation"
)

const escalationSystemPrompt = `You interpret replies to two-person workout scheduling proposals.
Given the proposal context and the partner's reply, answer with a single JSON object:
{"intent": "accept" | "decline" | "counter_propose" | "mixed" | "unclear",
 "date": "YYYY-MM-DD" or null,
 "start_unit": hour 0-23 or null,
 "end_unit": hour 1-24 or null}
Set date/start_unit/end_unit only for counter_propose or mixed, and only when the reply names a concrete alternative. Do not invent times.`

// Config holds settings for the escalation client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Escalator implements negotiation.Escalator over an OpenAI-compatible
// chat completion API.
type Escalator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewEscalator creates an escalator. Returns nil when no API key is
// configured; the negotiation service treats a nil escalator as disabled.
func NewEscalator(cfg Config) *Escalator {
	if cfg.APIKey == "" {
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Escalator{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: timeout,
		logger:  slog.Default().With("component", "ai-escalator"),
	}
}

// ClassifyUnclear implements negotiation.Escalator.
func (e *Escalator) ClassifyUnclear(ctx context.Context, text string, ectx negotiation.EscalationContext) (intent.Result, error) {
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest("escalate")

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   100,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: escalationSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Proposal: %s, %02d:00-%02d:00.\nReply: %s",
					ectx.Date, ectx.StartUnit, ectx.EndUnit, text),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)
	if err != nil {
		e.logger.Warn("escalation request failed",
			slog.Any("error", err), slog.Int64("latency_ms", latency.Milliseconds()))
		metrics.RecordFailure("escalate")
		return intent.Result{}, apperrors.LLMUnavailable(err.Error())
	}
	if len(resp.Choices) == 0 {
		metrics.RecordFailure("escalate")
		return intent.Result{}, apperrors.LLMUnavailable("empty completion")
	}

	result, err := parseEscalation(resp.Choices[0].Message.Content)
	if err != nil {
		e.logger.Warn("unparseable escalation response",
			slog.String("content", resp.Choices[0].Message.Content), slog.Any("error", err))
		metrics.RecordFailure("escalate")
		return intent.Result{}, apperrors.LLMUnavailable(err.Error())
	}
	metrics.RecordDuration("escalate", latency)

	e.logger.Debug("escalation completed",
		slog.String("proposal", ectx.ProposalUID),
		slog.String("intent", string(result.Type)),
		slog.Int64("latency_ms", latency.Milliseconds()),
		slog.Int("tokens", resp.Usage.TotalTokens))
	return result, nil
}

// minSessionUnits mirrors the negotiation service's minimum slot length;
// shorter slots from the model are dropped rather than forwarded.
const minSessionUnits int32 = 2

var codeFencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

func parseEscalation(content string) (intent.Result, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if matches := codeFencePattern.FindStringSubmatch(content); len(matches) > 1 {
			content = matches[1]
		}
	}

	var raw struct {
		Intent    string  `json:"intent"`
		Date      *string `json:"date"`
		StartUnit *int32  `json:"start_unit"`
		EndUnit   *int32  `json:"end_unit"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return intent.Result{}, fmt.Errorf("unmarshal completion: %w", err)
	}

	result := intent.Result{Type: mapIntent(raw.Intent)}
	if (result.Type == intent.TypeCounterPropose || result.Type == intent.TypeMixed) &&
		raw.Date != nil && raw.StartUnit != nil && raw.EndUnit != nil {
		if _, err := time.Parse(time.DateOnly, *raw.Date); err == nil &&
			*raw.StartUnit >= 0 && *raw.EndUnit <= 24 &&
			*raw.EndUnit-*raw.StartUnit >= minSessionUnits {
			result.Slot = &intent.ParsedSlot{
				Date:      *raw.Date,
				StartUnit: *raw.StartUnit,
				EndUnit:   *raw.EndUnit,
			}
		}
	}
	return result, nil
}

func mapIntent(s string) intent.Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "yes":
		return intent.TypeAccept
	case "decline", "no":
		return intent.TypeDecline
	case "counter_propose", "counter":
		return intent.TypeCounterPropose
	case "mixed":
		return intent.TypeMixed
	default:
		return intent.TypeUnclear
	}
}
