package llm

import "strings"

// CleanJSONBlock strips markdown code fences around a JSON payload along with
// any prose before or after the first complete object or array.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a language tag such as "json" on the fence line.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			tag := text[:idx]
			if len(tag) < 20 && !strings.ContainsAny(tag, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	if v := balanced(text[start:]); v != "" {
		return v
	}
	return text[start:]
}

// balanced returns the leading JSON object or array of s, honoring strings
// and escapes, or "" if it never closes.
func balanced(s string) string {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// ErrorKind classifies provider failures for callers that map them to statuses.
type ErrorKind string

// Provider failure kinds
const (
	ErrorAuth        ErrorKind = "auth"
	ErrorRateLimited ErrorKind = "rate_limited"
	ErrorOther       ErrorKind = "other"
)

// Classify inspects a provider error message. The Gemini SDK surfaces gRPC and
// HTTP failures as opaque wrapped errors, so the message text is all there is.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "api key", "api_key", "permission", "unauthenticated", "authentication"):
		return ErrorAuth
	case containsAny(msg, "429", "quota", "rate", "resource_exhausted", "resource exhausted"):
		return ErrorRateLimited
	}
	return ErrorOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
