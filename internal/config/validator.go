package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/stepwise/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "store.type")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidStoreTypes returns the supported session backends
func ValidStoreTypes() []string {
	return []string{"memory", "file", "redis"}
}

// ValidLogFormats returns the supported log output formats
func ValidLogFormats() []string {
	return []string{string(logging.FormatText), string(logging.FormatJSON)}
}

// ValidMCPTransports returns the supported MCP transports
func ValidMCPTransports() []string {
	return []string{"stdio", "sse"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.File) == "" {
		errors = append(errors, ValidationError{Field: "file", Value: c.File, Message: "must not be empty"})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, ValidationError{Field: "log.level", Value: c.Log.Level, Message: "must be one of debug, info, warn, error"})
	}
	if !slices.Contains(ValidLogFormats(), c.Log.Format) {
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Value:   c.Log.Format,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	switch c.Store.Type {
	case "file":
		if c.Store.Dir == "" {
			errors = append(errors, ValidationError{Field: "store.dir", Value: c.Store.Dir, Message: "must not be empty for the file store"})
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			errors = append(errors, ValidationError{Field: "store.redis.addr", Value: c.Store.Redis.Addr, Message: "must not be empty for the redis store"})
		}
		if c.Store.Redis.DB < 0 {
			errors = append(errors, ValidationError{Field: "store.redis.db", Value: c.Store.Redis.DB, Message: "must be non-negative"})
		}
		if c.Store.Redis.TTL < 0 {
			errors = append(errors, ValidationError{Field: "store.redis.ttl", Value: c.Store.Redis.TTL, Message: "must be non-negative"})
		}
	case "memory":
	default:
		errors = append(errors, ValidationError{
			Field:   "store.type",
			Value:   c.Store.Type,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidStoreTypes(), ", ")),
		})
	}
	if c.Store.LockTTL <= 0 {
		errors = append(errors, ValidationError{Field: "store.lock_ttl", Value: c.Store.LockTTL, Message: "must be positive"})
	}
	if _, _, _, err := c.Store.EncryptionKeys(); err != nil {
		errors = append(errors, ValidationError{Field: "store.encryption_key", Value: "[redacted]", Message: err.Error()})
	}

	if c.Serve.Addr == "" {
		errors = append(errors, ValidationError{Field: "serve.addr", Value: c.Serve.Addr, Message: "must not be empty"})
	}

	if !slices.Contains(ValidMCPTransports(), c.MCP.Transport) {
		errors = append(errors, ValidationError{
			Field:   "mcp.transport",
			Value:   c.MCP.Transport,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidMCPTransports(), ", ")),
		})
	}
	if c.MCP.Port < 1 || c.MCP.Port > 65535 {
		errors = append(errors, ValidationError{Field: "mcp.port", Value: c.MCP.Port, Message: "must be between 1 and 65535"})
	}

	return errors
}
