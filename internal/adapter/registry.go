// Package adapter holds the per-model execution profiles used by the enhanced benchmark path.
package adapter

import (
	"sort"
	"strings"
)

// Profile is the execution profile applied to a model invocation.
type Profile struct {
	ModelID            string
	Family             string
	SystemInstructions string
	Temperature        float64
	TopP               float64
	MaxOutputTokens    int
}

// Summary describes a profile without exposing its instruction text.
type Summary struct {
	ModelID         string  `json:"modelId"`
	Family          string  `json:"family"`
	Registered      bool    `json:"registered"`
	HasInstructions bool    `json:"hasSystemInstructions"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultProfile is returned for model IDs that are not registered.
var DefaultProfile = Profile{
	ModelID:            "default",
	Family:             "generic",
	SystemInstructions: "You are a helpful assistant. Answer precisely, organise longer answers with headings and lists, and state assumptions explicitly.",
	Temperature:        0.7,
	TopP:               0.9,
	MaxOutputTokens:    1024,
}

// Registry resolves model IDs to profiles. It is read-only after construction.
type Registry struct {
	profiles map[string]Profile
	fallback Profile
}

// NewRegistry builds a registry from the given profiles. Later entries win on duplicate IDs.
func NewRegistry(profiles ...Profile) *Registry {
	registry := &Registry{
		profiles: make(map[string]Profile, len(profiles)),
		fallback: DefaultProfile,
	}
	for _, profile := range profiles {
		key := normalizeID(profile.ModelID)
		if key == "" {
			continue
		}
		registry.profiles[key] = profile
	}
	return registry
}

// DefaultRegistry returns a registry holding the built-in profiles.
func DefaultRegistry() *Registry {
	return NewRegistry(builtinProfiles...)
}

// Resolve returns the profile for modelID, or the default profile when it is unknown.
func (r *Registry) Resolve(modelID string) Profile {
	if profile, ok := r.lookup(modelID); ok {
		return profile
	}
	if r == nil {
		return DefaultProfile
	}
	return r.fallback
}

// Registered reports whether modelID has its own profile.
func (r *Registry) Registered(modelID string) bool {
	_, ok := r.lookup(modelID)
	return ok
}

// Describe returns observability metadata for modelID.
func (r *Registry) Describe(modelID string) Summary {
	profile, ok := r.lookup(modelID)
	if !ok {
		profile = r.Resolve(modelID)
	}
	summary := summarize(profile, ok)
	if !ok && strings.TrimSpace(modelID) != "" {
		summary.ModelID = strings.TrimSpace(modelID)
	}
	return summary
}

// List returns summaries of all registered profiles ordered by model ID.
func (r *Registry) List() []Summary {
	if r == nil {
		return []Summary{}
	}
	keys := make([]string, 0, len(r.profiles))
	for key := range r.profiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summaries := make([]Summary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, summarize(r.profiles[key], true))
	}
	return summaries
}

func (r *Registry) lookup(modelID string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	profile, ok := r.profiles[normalizeID(modelID)]
	return profile, ok
}

func summarize(profile Profile, registered bool) Summary {
	return Summary{
		ModelID:         profile.ModelID,
		Family:          profile.Family,
		Registered:      registered,
		HasInstructions: strings.TrimSpace(profile.SystemInstructions) != "",
		Temperature:     profile.Temperature,
		TopP:            profile.TopP,
		MaxOutputTokens: profile.MaxOutputTokens,
	}
}

func normalizeID(modelID string) string {
	return strings.ToLower(strings.TrimSpace(modelID))
}
