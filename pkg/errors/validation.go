package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// projectKeyRegex matches JIRA project keys: an uppercase letter followed by
// uppercase letters, digits or underscores.
var projectKeyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9_]{1,19}$`)

// ValidateProjectKey validates a JIRA project key such as "HEL" or "PLAYER2".
func ValidateProjectKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidProject, "project key cannot be empty")
	}
	if !projectKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidProject, "invalid project key: %q", key)
	}
	return nil
}

// piIDRegex matches PI identifiers ("pi1" .. "pi99").
var piIDRegex = regexp.MustCompile(`^pi[1-9][0-9]?$`)

// ValidatePIID validates a PI identifier as produced by the PI calendar.
func ValidatePIID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPI, "PI id cannot be empty")
	}
	if !piIDRegex.MatchString(id) {
		return New(ErrCodeInvalidPI, "invalid PI id: %q", id)
	}
	return nil
}

// ValidateTaskID validates a task identifier. Task ids are either issue keys
// ("HEL-123") or free-form ids from board files, so only length and
// character safety are checked.
func ValidateTaskID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTask, "task id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidTask, "task id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidTask, "task id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, `/\`) {
		return New(ErrCodeInvalidTask, "task id cannot contain path separators")
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateOneOf checks that value is one of allowed. An empty value is
// accepted so callers can apply their own default.
func ValidateOneOf(code Code, what, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(code, "invalid %s %q (want one of: %s)", what, value, strings.Join(allowed, ", "))
}
