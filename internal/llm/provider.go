package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/framescope/framescope/internal/model"
)

// Provider defines the interface for automated frame-labeling backends
type Provider interface {
	// Name returns the provider name, used for rate-limit keys and audit fields
	Name() string

	// ClassifyFrame assigns one closed-set frame category to a snippet
	ClassifyFrame(ctx context.Context, req ClassifyRequest) (*Classification, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the input for one frame classification
type ClassifyRequest struct {
	// Snippet is the transcript excerpt to classify
	Snippet string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Classification contains the provider's answer
type Classification struct {
	// Frame is the parsed category; FrameUnknown when the reply did not
	// resolve to a closed-set name
	Frame model.Frame

	// Raw is the verbatim model reply, kept for auditing
	Raw string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling; frame coding wants it at or near zero
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Model:       "",
		Timeout:     60,
		MaxTokens:   64,
		Temperature: 0.0,
	}
}

// systemPrompt pins every provider to single-word category answers.
const systemPrompt = "You are a careful content-analysis coder. You always answer with exactly one category name from the list you are given, in lowercase, with no punctuation or explanation."

// BuildPrompt constructs the default classification prompt. The category
// list is closed: the model must answer with exactly one of the four names.
func BuildPrompt(snippet string) string {
	return fmt.Sprintf(`You are coding a TV/interview transcript excerpt for how it frames immigration.

Assign exactly ONE of these categories:
- security: crime, border control, enforcement, terrorism, threat
- economic: jobs, wages, taxes, fiscal cost or benefit
- humanitarian: refuge, asylum, family separation, rights, moral duty
- other: immigration talk that fits none of the three frames above

Rules:
1. Answer with a single lowercase word: security, economic, humanitarian or other.
2. Do not explain, qualify or add punctuation.
3. Judge only the text below.

Excerpt:
%s`, snippet)
}

// ParseFrameResponse maps a model reply to a Frame. The whole trimmed reply
// is tried first; replies like "Frame: security" fall back to a word scan.
// Anything else resolves to FrameUnknown so callers can count the failure.
func ParseFrameResponse(raw string) model.Frame {
	cleaned := strings.Trim(strings.ToLower(strings.TrimSpace(raw)), ".,;:!?\"'")
	if f := model.ParseFrame(cleaned); f != model.FrameUnknown {
		return f
	}

	for _, word := range strings.Fields(cleaned) {
		word = strings.Trim(word, ".,;:!?\"'()*")
		if f := model.ParseFrame(word); f != model.FrameUnknown {
			return f
		}
	}

	return model.FrameUnknown
}
