package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ServiceKind tags a descriptor in the services file.
type ServiceKind string

const (
	// ServiceKindLuis describes an NLU recognizer application.
	ServiceKindLuis ServiceKind = "luis"
	// ServiceKindEndpoint describes a channel endpoint. Entries of this kind
	// are operator documentation; the registry does not materialize them.
	ServiceKindEndpoint ServiceKind = "endpoint"
)

// ServiceEntry is one tagged descriptor from the services file. Which fields
// are required depends on Kind.
type ServiceEntry struct {
	Kind ServiceKind `json:"type" validate:"required"`
	Name string      `json:"name" validate:"required"`

	// Recognizer fields (kind "luis"). SubscriptionKey is the runtime key;
	// AuthoringKey is optional and unused at runtime. One of Region or
	// Endpoint must be set.
	AppID           string `json:"appId,omitempty" validate:"required_if=Kind luis"`
	SubscriptionKey string `json:"subscriptionKey,omitempty" validate:"required_if=Kind luis"`
	AuthoringKey    string `json:"authoringKey,omitempty"`
	Region          string `json:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
}

// LoadServices reads and validates the service descriptor list. A malformed
// entry of a known kind is a hard error so the process never starts serving
// turns against a broken registry.
func LoadServices(path string) ([]ServiceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read services file %s: %w", path, err)
	}

	var entries []ServiceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse services file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("service entry %d (%q): %w", i, entry.Name, err)
		}
		if entry.Kind == ServiceKindLuis && entry.Region == "" && entry.Endpoint == "" {
			return nil, fmt.Errorf("service entry %d (%q): either region or endpoint is required", i, entry.Name)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("duplicate service name %q", entry.Name)
		}
		seen[entry.Name] = true
	}

	return entries, nil
}
