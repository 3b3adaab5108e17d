// Package validation checks caller-supplied service fields before they reach
// storage, container names or proxy labels.
package validation

import (
	"regexp"
	"strings"

	"traefiker/internal/errors"
)

var (
	// serviceNameRegex allows names usable as container names and proxy router keys
	serviceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

	// hostLabelRegex validates one DNS label of a hostname
	hostLabelRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

	// envVarKeyRegex validates environment variable keys
	envVarKeyRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)
)

const (
	maxServiceNameLength = 63
	maxHostnameLength    = 253
	maxHostLabelLength   = 63
)

// ServiceName validates a service name
func ServiceName(name string) error {
	if name == "" {
		return errors.ValidationFailed("name", name, "cannot be empty")
	}

	if len(name) > maxServiceNameLength {
		return errors.ValidationFailed("name", name, "too long (max 63 characters)")
	}

	if !serviceNameRegex.MatchString(name) {
		return errors.ValidationFailed("name", name, "must start with a letter or digit and contain only letters, digits, '_' and '-'")
	}

	return nil
}

// ProjectName validates a project name
func ProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.ValidationFailed("project", name, "cannot be empty")
	}
	if len(name) > maxHostnameLength {
		return errors.ValidationFailed("project", name, "too long")
	}
	return nil
}

// Hostname validates a routed hostname. A leading "*." wildcard is allowed.
func Hostname(host string) error {
	if host == "" {
		return errors.ValidationFailed("hosts", host, "cannot be empty")
	}
	if len(host) > maxHostnameLength {
		return errors.ValidationFailed("hosts", host, "too long (max 253 characters)")
	}

	labels := strings.Split(strings.TrimPrefix(host, "*."), ".")
	for _, label := range labels {
		if len(label) > maxHostLabelLength || !hostLabelRegex.MatchString(label) {
			return errors.ValidationFailed("hosts", host, "must be a valid DNS hostname")
		}
	}
	return nil
}

// Hosts validates every hostname and returns the list without duplicates, keeping order
func Hosts(hosts []string) ([]string, error) {
	seen := make(map[string]bool, len(hosts))
	unique := make([]string, 0, len(hosts))
	for _, host := range hosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if err := Hostname(host); err != nil {
			return nil, err
		}
		if seen[host] {
			continue
		}
		seen[host] = true
		unique = append(unique, host)
	}
	return unique, nil
}

// EnvironmentKey validates an environment variable key
func EnvironmentKey(key string) error {
	if key == "" {
		return errors.ValidationFailed("environment_variable_key", key, "cannot be empty")
	}

	if !envVarKeyRegex.MatchString(key) {
		return errors.ValidationFailed("environment_variable_key", key, "must contain only letters, numbers, '.' and underscores")
	}

	return nil
}

// Redirect validates a redirect rule; the regex must compile
func Redirect(regex, replacement string) error {
	if regex == "" {
		return errors.ValidationFailed("redirects.regex", regex, "cannot be empty")
	}
	if _, err := regexp.Compile(regex); err != nil {
		return errors.ValidationFailed("redirects.regex", regex, err.Error())
	}
	if replacement == "" {
		return errors.ValidationFailed("redirects.replacement", replacement, "cannot be empty")
	}
	return nil
}

// NonEmptyString validates that a string is not empty or only whitespace
func NonEmptyString(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.ValidationFailed(field, s, "cannot be empty or only whitespace")
	}
	return nil
}
