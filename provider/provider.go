package provider

import (
	"context"
	"errors"

	"github.com/whiskertrack/whiskertrack/config"
	"github.com/whiskertrack/whiskertrack/models"
	openai_provider "github.com/whiskertrack/whiskertrack/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Provider is the interface all content-generation implementations satisfy
type Provider interface {
	// GenerateArchive writes a disease-history narrative for a pet from its
	// abnormal-event records. The narrative is newline-delimited paragraphs,
	// each opening with its date.
	GenerateArchive(ctx context.Context, pet models.Pet, events []models.AbnormalEvent) (string, error)
	// GeneralMessage answers a free-form assistant question about a pet.
	GeneralMessage(ctx context.Context, message string, pet models.Pet) (string, error)
}

// NewProvider creates an LLM client from config
func NewProvider(client Client, cfg config.OpenAIConfig) (Provider, error) {
	switch client {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("providers.openai.api_key not set")
		}
		return openai_provider.NewOpenAIClient(
			cfg.APIKey,
			cfg.CompletionModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
