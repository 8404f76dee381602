package agent

import (
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"mdit/internal/chat"
)

// Tokenizer counts prompt tokens with tiktoken, falling back to a heuristic
// when the BPE data is unavailable (offline environments).
type Tokenizer struct {
	encoder  *tiktoken.Tiktoken
	fallback bool
}

func NewTokenizer(encodingName string) *Tokenizer {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return &Tokenizer{fallback: true}
	}
	return &Tokenizer{encoder: enc}
}

// NewTokenizerForModel picks an encoding from the model name.
func NewTokenizerForModel(model string) *Tokenizer {
	m := strings.ToLower(strings.TrimSpace(model))
	encoding := "cl100k_base"
	if strings.HasPrefix(m, "gpt-4o") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") {
		encoding = "o200k_base"
	}
	return NewTokenizer(encoding)
}

// Count returns the approximate token count of a message list, including
// per-message and tool-call structural overhead.
func (t *Tokenizer) Count(messages []chat.Message) int {
	total := 0
	for _, msg := range messages {
		total += 4
		total += t.CountText(msg.Role)
		total += t.CountText(msg.Content)
		for _, tc := range msg.ToolCalls {
			total += t.CountText(tc.Function.Name)
			total += t.CountText(tc.Function.Arguments)
			total += 8
		}
	}
	return total
}

func (t *Tokenizer) CountText(text string) int {
	if text == "" {
		return 0
	}
	if t.fallback {
		// ~4 chars per token for mostly-ASCII prompts.
		n := len(text) / 4
		if n < 1 {
			n = 1
		}
		return n
	}
	return len(t.encoder.Encode(text, nil, nil))
}

// IsPrecise reports whether tiktoken is in use rather than the heuristic.
func (t *Tokenizer) IsPrecise() bool {
	return !t.fallback
}
