// Package intent classifies free-text partner responses into typed
// negotiation intents. The classifier is a pure function from text to a
// tagged variant, independently testable; anything it cannot confidently
// categorize is handed to the escalation hook by the caller.
package intent

import (
	"regexp"
	"strings"
	"time"
)

// Type represents the classified intent of a partner response.
type Type string

const (
	// TypeAccept confirms the proposed session.
	TypeAccept Type = "accept"
	// TypeDecline turns the proposal down without an alternative.
	TypeDecline Type = "decline"
	// TypeCounterPropose suggests a different time.
	TypeCounterPropose Type = "counter_propose"
	// TypeMixed declines the proposed time and suggests another in the same
	// message.
	TypeMixed Type = "mixed"
	// TypeUnclear is long or interrogative text to escalate to the AI
	// collaborator.
	TypeUnclear Type = "unclear"
	// TypeUnknown triggers a clarification prompt; no transition happens.
	TypeUnknown Type = "unknown"
)

// ParsedSlot is a concrete session window extracted from a counter-proposal.
type ParsedSlot struct {
	// Date is the resolved calendar date in ISO form (2006-01-02).
	Date      string
	StartUnit int32
	EndUnit   int32
}

// Result is the classification outcome. Slot is set for counter_propose and
// mixed when a time reference was extractable.
type Result struct {
	Type Type
	Slot *ParsedSlot
}

// Config holds classifier tunables.
type Config struct {
	// LongTextThreshold is the rune count past which otherwise unmatched
	// text is escalated as unclear rather than reported unknown.
	LongTextThreshold int
	// DefaultDurationUnits is the session length assumed when a counter
	// names a start time but no end.
	DefaultDurationUnits int32
	// UnitsPerDay bounds parsed units.
	UnitsPerDay int32
	// Now is the clock used to resolve weekday names to dates.
	Now func() time.Time
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		LongTextThreshold:    100,
		DefaultDurationUnits: 2,
		UnitsPerDay:          24,
		Now:                  time.Now,
	}
}

// Classifier classifies partner responses with keyword lists and compiled
// patterns, evaluated in a fixed precedence order.
type Classifier struct {
	config Config

	acceptPatterns  []*regexp.Regexp
	declinePatterns []*regexp.Regexp
	questionWords   []string
}

// NewClassifier creates a classifier with the default configuration.
func NewClassifier() *Classifier {
	return NewClassifierWithConfig(DefaultConfig())
}

// NewClassifierWithConfig creates a classifier with the given configuration.
func NewClassifierWithConfig(config Config) *Classifier {
	if config.LongTextThreshold <= 0 {
		config.LongTextThreshold = 100
	}
	if config.DefaultDurationUnits <= 0 {
		config.DefaultDurationUnits = 2
	}
	if config.UnitsPerDay <= 0 {
		config.UnitsPerDay = 24
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Classifier{
		config: config,
		acceptPatterns: compileAll(
			`\byes\b`,
			`\byeah?\b`,
			`\byep\b`,
			`\byup\b`,
			`\bsure\b`,
			`\bok(ay)?\b`,
			`\bsounds good\b`,
			`\bworks( for me)?\b`,
			`\bperfect\b`,
			`\bgreat\b`,
			`\bdeal\b`,
			`\bconfirm(ed)?\b`,
			`\bcount me in\b`,
			`\bsee you (there|then)\b`,
			`\bi'?m in\b`,
			`\blet'?s do it\b`,
		),
		declinePatterns: compileAll(
			`\bno\b`,
			`\bnope\b`,
			`\bnah\b`,
			`\bcan'?t\b`,
			`\bcannot\b`,
			`\bwon'?t\b`,
			`\bunable\b`,
			`\bbusy\b`,
			`\bsorry\b`,
			`\bpass\b`,
			`\bskip\b`,
			`\brain check\b`,
			`\banother time\b`,
			`\b(doesn'?t|don'?t|not going to) work\b`,
			`\bnot (free|available|possible)\b`,
		),
		questionWords: []string{
			"what", "when", "where", "which", "why", "who", "how",
		},
	}
}

// Classify maps a free-text response to a typed intent. Rules are evaluated
// in precedence order: a decline plus a time reference is a mixed response
// before anything else, so "can't Monday, how about Thursday 6pm?" becomes
// a counter-proposal carrying the decline context.
func (c *Classifier) Classify(text string) Result {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Result{Type: TypeUnknown}
	}

	isAccept := c.matchesAny(normalized, c.acceptPatterns)
	isDecline := c.matchesAny(normalized, c.declinePatterns)
	hasTime := hasTimeReference(normalized)

	switch {
	case isDecline && hasTime:
		return Result{Type: TypeMixed, Slot: c.parseSlot(normalized)}
	case isAccept && !isDecline:
		return Result{Type: TypeAccept}
	case isDecline && !hasTime:
		return Result{Type: TypeDecline}
	case hasTime && !isAccept:
		return Result{Type: TypeCounterPropose, Slot: c.parseSlot(normalized)}
	case c.isUnclear(normalized):
		return Result{Type: TypeUnclear}
	default:
		return Result{Type: TypeUnknown}
	}
}

// isUnclear catches text worth escalating: long messages and questions.
func (c *Classifier) isUnclear(normalized string) bool {
	if len([]rune(normalized)) > c.config.LongTextThreshold {
		return true
	}
	if strings.Contains(normalized, "?") {
		return true
	}
	for _, w := range c.questionWords {
		if strings.HasPrefix(normalized, w+" ") {
			return true
		}
	}
	return false
}

func (c *Classifier) matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func compileAll(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}
