package agent

import (
	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/tools"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
	"github.com/openai/openai-go/v3"
	openaioption "github.com/openai/openai-go/v3/option"
)

// Config describes the agent backend used for live trials.
type Config struct {
	Provider string `json:"provider" yaml:"provider" validate:"required,oneof=openai anthropic"`
	Model    string `json:"model" yaml:"model" validate:"required"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// LoadConfig reads and validates a runner config file.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load agent config %q", file)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		return errors.WithMessage(err, "invalid agent config")
	}
	return nil
}

// NewRunner builds a Runner for the configured provider, with the given
// tools declared to the model.
func NewRunner(cfg *Config, catalog []tools.Descriptor) (Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "openai":
		var opts []openaioption.RequestOption
		if cfg.Token != "" {
			opts = append(opts, openaioption.WithAPIKey(cfg.Token))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(cfg.BaseURL))
		}
		client := openai.NewClient(opts...)
		return NewOpenAIRunner(client, cfg.Model, WithOpenAITools(catalog)), nil
	case "anthropic":
		var opts []anthropicoption.RequestOption
		if cfg.Token != "" {
			opts = append(opts, anthropicoption.WithAPIKey(cfg.Token))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
		}
		client := anthropic.NewClient(opts...)
		return NewAnthropicRunner(client, cfg.Model, catalog), nil
	}
	return nil, errors.Errorf("unsupported provider %q", cfg.Provider)
}
