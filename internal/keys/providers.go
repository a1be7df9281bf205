package keys

// SupportedProviders lists the provider IDs a key can be stored for, in
// display order.
var SupportedProviders = []string{
	"openai",
	"anthropic",
	"google",
	"mistral",
	"perplexity",
	"xai",
	"openrouter",
	"ollama",
}

// keyless marks providers that never use an API key. Ollama runs locally;
// hasUserKey is always false for it even if a row was somehow stored.
var keyless = map[string]bool{
	"ollama": true,
}

// ProviderStatus reports whether the user has a key stored for a provider.
type ProviderStatus struct {
	Provider   string `json:"provider"`
	HasUserKey bool   `json:"has_user_key"`
}
