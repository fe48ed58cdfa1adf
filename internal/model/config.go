package model

import "time"

// Config is the complete claimify configuration.
type Config struct {
	Engine     EngineConfig           `yaml:"engine" mapstructure:"engine"`
	Memory     MemoryConfig           `yaml:"memory" mapstructure:"memory"`
	Transcript TranscriptConfig       `yaml:"transcript" mapstructure:"transcript"`
	Retrieval  RetrievalConfig        `yaml:"retrieval" mapstructure:"retrieval"`
	Events     EventsConfig           `yaml:"events" mapstructure:"events"`
	Sources    SourcesConfig          `yaml:"sources" mapstructure:"sources"`
	Logging    LoggingConfig          `yaml:"logging" mapstructure:"logging"`
	Speakers   map[string]SpeakerInfo `yaml:"speakers,omitempty" mapstructure:"speakers"`
}

// EngineConfig tunes the claim lifecycle.
type EngineConfig struct {
	Debounce              time.Duration `yaml:"debounce" mapstructure:"debounce"`
	PendingCorefTimeout   time.Duration `yaml:"pending_coref_timeout" mapstructure:"pending_coref_timeout"`
	MaxQueuePerMinute     int           `yaml:"max_queue_per_minute" mapstructure:"max_queue_per_minute"`
	MinVerifiability      float64       `yaml:"min_verifiability" mapstructure:"min_verifiability"`
	DisplayMinConfidence  float64       `yaml:"display_min_confidence" mapstructure:"display_min_confidence"`
	AllowFirstPersonNamed bool          `yaml:"allow_first_person_if_named" mapstructure:"allow_first_person_if_named"`
	AssembleFragments     bool          `yaml:"assemble_fragments" mapstructure:"assemble_fragments"`
}

// MemoryConfig sizes the entity memories.
type MemoryConfig struct {
	DequeSize int    `yaml:"deque_size" mapstructure:"deque_size"`
	TopicID   string `yaml:"topic_id,omitempty" mapstructure:"topic_id"`
}

// TranscriptConfig bounds the rolling transcript window.
type TranscriptConfig struct {
	WindowSize int `yaml:"window_size" mapstructure:"window_size"`
}

// RetrievalConfig configures the fact-check collaborator.
type RetrievalConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // dry-run, perplexity
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"-" mapstructure:"api_key"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens         int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Workers           int           `yaml:"workers" mapstructure:"workers"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// EventsConfig configures the lifecycle event publisher.
type EventsConfig struct {
	Enabled   bool     `yaml:"enabled" mapstructure:"enabled"`
	Brokers   []string `yaml:"brokers" mapstructure:"brokers"`
	Topic     string   `yaml:"topic" mapstructure:"topic"`
	Principal string   `yaml:"principal,omitempty" mapstructure:"principal"`
}

// SourcesConfig grades citation sources. DomainMap entries win over the
// domain lists, which win over path patterns.
type SourcesConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
}

// PathPattern assigns a tier to URLs whose path matches Pattern.
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			Debounce:              3 * time.Second,
			PendingCorefTimeout:   12 * time.Second,
			MaxQueuePerMinute:     10,
			MinVerifiability:      0.6,
			DisplayMinConfidence:  0.3,
			AllowFirstPersonNamed: true,
		},
		Memory: MemoryConfig{
			DequeSize: 20,
		},
		Transcript: TranscriptConfig{
			WindowSize: 120,
		},
		Retrieval: RetrievalConfig{
			Provider:          "dry-run",
			BaseURL:           "https://api.perplexity.ai",
			Model:             "sonar-pro",
			Timeout:           30 * time.Second,
			MaxTokens:         400,
			Workers:           2,
			RequestsPerSecond: 1,
			Burst:             2,
			CacheTTL:          10 * time.Minute,
		},
		Events: EventsConfig{
			Topic: "claimify.claims",
		},
		Sources: SourcesConfig{
			PrimaryDomains: []string{
				"abs.gov.au", "bls.gov", "census.gov", "ons.gov.uk", "statcan.gc.ca",
				"who.int", "un.org", "worldbank.org", "imf.org", "oecd.org",
				"europa.eu", "doi.org", "pubmed.ncbi.nlm.nih.gov",
			},
			SecondaryDomains: []string{
				"reuters.com", "apnews.com", "bbc.co.uk", "bbc.com", "abc.net.au",
				"ft.com", "economist.com", "nature.com", "wikipedia.org", "britannica.com",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
