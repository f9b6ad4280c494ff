// Package redact scrubs sensitive fragments from strings before they are
// logged. Database errors can echo connection strings and SQL, and auth
// failures can echo the offending token; neither belongs in log output.
package redact

import "regexp"

// Redaction placeholders
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

var (
	// Connection strings carrying inline credentials.
	connStringRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`)

	// Secrets assigned or passed inline.
	secretRegex = regexp.MustCompile(`(?i)(password|passwd|secret|api[_-]?key|token)([=:\s]['"]?)[^'"&\s]{3,}`)

	// Three-part base64url JWT tokens.
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// SQL fragments leaked from driver errors.
	sqlRegex = regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*()]+(?:FROM|INTO|SET)[\s\w,*()='"$]*`)

	// Filesystem paths.
	pathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	placeholders = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{connStringRegex, CredentialPlaceholder},
		{secretRegex, CredentialPlaceholder},
		{jwtRegex, TokenPlaceholder},
		{sqlRegex, SQLPlaceholder},
		{pathRegex, PathPlaceholder},
	}
)

// String redacts sensitive fragments from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range placeholders {
		result = p.pattern.ReplaceAllString(result, p.placeholder)
	}
	return result
}

// Error redacts sensitive fragments from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
