package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Content generation errors
var (
	ErrGenerationProvider  = errors.New("generation provider error")
	ErrGenerationMalformed = errors.New("generation response malformed")
	ErrGenerationTimeout   = errors.New("generation timed out")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing       = errors.New("configuration missing")
	ErrConfigInvalid       = errors.New("configuration invalid")
	ErrEnvironmentVariable = errors.New("environment variable error")
)

// Dependency errors
var (
	ErrServiceUnreachable = errors.New("service unreachable")
)

// ProviderError is the upstream status and body of a failed completion call.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// Content Generation Error Constructors
func NewGenerationProviderError(service string, status int, body string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrGenerationProvider,
		Details:    fmt.Sprintf("%s responded with status %d: %s", service, status, body),
		Cause:      &ProviderError{Status: status, Body: body},
	}
}

func NewGenerationMalformedError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrGenerationMalformed,
		Details:    fmt.Sprintf("%s returned no usable content", service),
		Cause:      cause,
	}
}

func NewGenerationTimeoutError(service string, timeout time.Duration) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusGatewayTimeout,
		err:        ErrGenerationTimeout,
		Details:    fmt.Sprintf("%s did not respond within %s", service, timeout),
	}
}

// Configuration & Environment Error Constructors
func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("Configuration error for %s", configName),
		Cause:      cause,
	}
}

func NewConfigInvalidError(configName, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigInvalid,
		Details:    fmt.Sprintf("Invalid value for %s: %s", configName, reason),
		Field:      configName,
	}
}

func NewEnvironmentVariableError(varName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        fmt.Errorf("%w: %w", ErrConfigMissing, ErrEnvironmentVariable),
		Details:    fmt.Sprintf("Environment variable %s is not set or invalid", varName),
		Field:      varName,
	}
}

// Dependency & Service Discovery Error Constructors
func NewServiceUnreachableError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnreachable,
		Details:    fmt.Sprintf("Service %s is unreachable", service),
		Cause:      cause,
		Field:      "service_discovery",
	}
}

func IsGenerationProviderError(err error) bool {
	return errors.Is(err, ErrGenerationProvider)
}

func IsGenerationMalformedError(err error) bool {
	return errors.Is(err, ErrGenerationMalformed)
}

func IsGenerationTimeoutError(err error) bool {
	return errors.Is(err, ErrGenerationTimeout)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigMissing) || errors.Is(err, ErrConfigInvalid)
}

func IsServiceUnreachableError(err error) bool {
	return errors.Is(err, ErrServiceUnreachable)
}
