package chat

import "sort"

// Model describes a chat model the platform can route to.
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Free     bool   `json:"free"`
	Pro      bool   `json:"pro"`
	Guest    bool   `json:"guest_allowed"`
}

// catalog is the static model registry. Free models need no stored provider
// key; pro models count against the separate daily pro limit. Guest-allowed
// models are always a subset of the free tier.
var catalog = map[string]Model{
	"gpt-4.1-mini":     {ID: "gpt-4.1-mini", Name: "GPT-4.1 mini", Provider: "openai", Free: true, Guest: true},
	"gemini-2.0-flash": {ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: "google", Free: true, Guest: true},
	"mistral-small":    {ID: "mistral-small", Name: "Mistral Small", Provider: "mistral", Free: true},
	"gpt-4o":           {ID: "gpt-4o", Name: "GPT-4o", Provider: "openai"},
	"gpt-4.1":          {ID: "gpt-4.1", Name: "GPT-4.1", Provider: "openai"},
	"claude-sonnet-4":  {ID: "claude-sonnet-4", Name: "Claude Sonnet 4", Provider: "anthropic", Pro: true},
	"o3":               {ID: "o3", Name: "o3", Provider: "openai", Pro: true},
}

// LookupModel returns the catalog entry for id.
func LookupModel(id string) (Model, bool) {
	m, ok := catalog[id]
	return m, ok
}

// GuestAllowed reports whether unauthenticated users may use the model.
func GuestAllowed(id string) bool {
	return catalog[id].Guest
}

// Models returns all catalog entries ordered by ID.
func Models() []Model {
	out := make([]Model, 0, len(catalog))
	for _, m := range catalog {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
