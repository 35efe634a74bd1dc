package model

// Config is the full framescope configuration, layered from defaults, the
// YAML config file and FRAMESCOPE_* environment variables.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Keywords KeywordsConfig `yaml:"keywords" mapstructure:"keywords"`
	Snippet  SnippetConfig  `yaml:"snippet" mapstructure:"snippet"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Eval     EvalConfig     `yaml:"evaluation" mapstructure:"evaluation"`
	Topics   TopicsConfig   `yaml:"topics" mapstructure:"topics"`
	Trends   TrendsConfig   `yaml:"trends" mapstructure:"trends"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
}

// StoreConfig locates the SQLite dataset store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file path
}

// KeywordsConfig holds the keyword stems shared by the relevance filter and
// the snippet extractor.
type KeywordsConfig struct {
	Stems []string `yaml:"stems" mapstructure:"stems"`
}

// SnippetConfig controls snippet extraction.
type SnippetConfig struct {
	WindowRadius int   `yaml:"window_radius" mapstructure:"window_radius"` // Context words each side of a hit
	Seed         int64 `yaml:"seed" mapstructure:"seed"`                   // Base seed for window selection
	MinWords     int   `yaml:"min_words" mapstructure:"min_words"`         // Documents below this are flagged
}

// LLMConfig configures the automated frame-labeling provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // "openai", "anthropic", "ollama" or "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // Seconds per request
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// BatchConfig controls checkpointed batch labeling.
type BatchConfig struct {
	Size       int `yaml:"size" mapstructure:"size"`                 // Episodes per checkpointed batch
	MinDelayMS int `yaml:"min_delay_ms" mapstructure:"min_delay_ms"` // Minimum delay between API calls
	Retries    int `yaml:"retries" mapstructure:"retries"`           // Attempts per episode before marking missing
	Workers    int `yaml:"workers" mapstructure:"workers"`           // Concurrent label calls (the limiter still spaces them)
}

// EvalConfig controls the classifier evaluation harness.
type EvalConfig struct {
	Classifier string `yaml:"classifier" mapstructure:"classifier"` // bayes, logistic, svm, forest
	Folds      string `yaml:"folds" mapstructure:"folds"`           // "loo", "kfold" or "holdout"
	K          int    `yaml:"k" mapstructure:"k"`                   // Fold count for kfold
	Seed       int64  `yaml:"seed" mapstructure:"seed"`
	Workers    int    `yaml:"workers" mapstructure:"workers"`     // Parallel folds
	Rebalance  string `yaml:"rebalance" mapstructure:"rebalance"` // "none", "weight" or "upsample"
	TFIDF      bool   `yaml:"tfidf" mapstructure:"tfidf"`
}

// TopicsConfig controls LDA topic modeling.
type TopicsConfig struct {
	K          int `yaml:"k" mapstructure:"k"`
	Iterations int `yaml:"iterations" mapstructure:"iterations"`
	TopTerms   int `yaml:"top_terms" mapstructure:"top_terms"`
	Workers    int `yaml:"workers" mapstructure:"workers"` // Parallel LDA processes
}

// TrendsConfig controls period aggregation.
type TrendsConfig struct {
	Period string `yaml:"period" mapstructure:"period"` // "month", "quarter" or "year"
}

// CacheConfig controls the snippet cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir      string `yaml:"dir" mapstructure:"dir"` // "" resolves to ~/.framescope/cache
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "framescope.db",
		},
		Keywords: KeywordsConfig{
			Stems: []string{"immigr", "migrant", "asylum", "refugee", "border", "deport", "visa", "amnesty"},
		},
		Snippet: SnippetConfig{
			WindowRadius: 50,
			Seed:         42,
			MinWords:     25,
		},
		LLM: LLMConfig{
			Provider:    "",
			Timeout:     60,
			MaxTokens:   64,
			Temperature: 0.0,
		},
		Batch: BatchConfig{
			Size:       20,
			MinDelayMS: 1100,
			Retries:    3,
			Workers:    2,
		},
		Eval: EvalConfig{
			Classifier: "bayes",
			Folds:      "loo",
			K:          10,
			Seed:       42,
			Workers:    4,
			Rebalance:  "none",
		},
		Topics: TopicsConfig{
			K:          8,
			Iterations: 120,
			TopTerms:   10,
			Workers:    4,
		},
		Trends: TrendsConfig{
			Period: "quarter",
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 720,
		},
	}
}
