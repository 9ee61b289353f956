package domain

import "fmt"

// ConfigurationError means a provider cannot be constructed from its config.
type ConfigurationError struct {
	Provider string
	Field    string
	Reason   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s: invalid configuration", e.Provider)
	if e.Field != "" {
		msg += fmt.Sprintf(" for %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func MissingField(provider, field string) *ConfigurationError {
	return &ConfigurationError{Provider: provider, Field: field, Reason: "value is required"}
}

type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %s", e.Provider)
}

// NotConfiguredError is returned for a known provider without configuration.
type NotConfiguredError struct {
	Provider string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s not configured", e.Provider)
}

type UnsupportedOperationError struct {
	Provider  string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: %s not yet implemented", e.Provider, e.Operation)
}

// TransientQueryError wraps a vendor failure that happened after construction.
type TransientQueryError struct {
	Provider  string
	Operation string
	Err       error
}

func (e *TransientQueryError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Provider, e.Operation, e.Err)
}

func (e *TransientQueryError) Unwrap() error { return e.Err }

// InvalidParameterError rejects a caller-supplied argument such as days or minutes.
type InvalidParameterError struct {
	Name   string
	Value  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Name, e.Value, e.Reason)
}
