package generate

import (
	"regexp"
	"strings"

	"server/internal/replicate"
)

// Image candidates shorter than this are never treated as raw base64 payloads;
// short opaque strings are much more likely to be ids or status words.
const minBase64Length = 100

var (
	base64Pattern      = regexp.MustCompile(`^[A-Za-z0-9+/=\s]+$`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	mimeSubtypePattern = regexp.MustCompile(`[^a-z0-9]`)
)

// Object keys probed for an image reference, in priority order.
var imageFieldOrder = []string{"image", "url", "uri", "path"}

// ExtractImage locates a usable image reference in a finished prediction's
// output: a URL, a data URI, or a raw base64 payload wrapped as a data URI
// using outputFormat as the MIME subtype. Returns "" when nothing matches.
func ExtractImage(pred *replicate.Prediction, outputFormat string) string {
	if pred == nil {
		return ""
	}
	for _, candidate := range imageCandidates(pred.Output) {
		if ref := normalizeImageRef(candidate, outputFormat); ref != "" {
			return ref
		}
	}
	return ""
}

func imageCandidates(output any) []string {
	switch v := output.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			switch el := item.(type) {
			case string:
				out = append(out, el)
			case map[string]any:
				for _, key := range imageFieldOrder {
					if s, ok := el[key].(string); ok {
						out = append(out, s)
						break
					}
				}
			}
		}
		return out
	}
	return nil
}

func normalizeImageRef(candidate, outputFormat string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ""
	}
	if strings.HasPrefix(candidate, "http://") ||
		strings.HasPrefix(candidate, "https://") ||
		strings.HasPrefix(candidate, "data:") {
		return candidate
	}
	if len(candidate) > minBase64Length && base64Pattern.MatchString(candidate) {
		payload := whitespacePattern.ReplaceAllString(candidate, "")
		return "data:image/" + mimeSubtype(outputFormat) + ";base64," + payload
	}
	return ""
}

func mimeSubtype(format string) string {
	sub := mimeSubtypePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(format)), "")
	if sub == "" {
		return "jpeg"
	}
	return sub
}

// ExtractText pulls a plain-text result out of the prediction's loosely typed
// envelope, probing the plausible shapes in priority order. Returns "" when
// nothing usable is found; callers fall back to their original prompt.
func ExtractText(pred *replicate.Prediction) string {
	if pred == nil {
		return ""
	}
	if s, ok := pred.Output.(string); ok {
		if t := strings.TrimSpace(s); t != "" {
			return t
		}
	}
	if items, ok := pred.Output.([]any); ok {
		for _, item := range items {
			if t := textFromElement(item); t != "" {
				return t
			}
		}
	}
	if t := strings.TrimSpace(pred.OutputText); t != "" {
		return t
	}
	return tailOfLogs(pred.Logs, 5)
}

func textFromElement(item any) string {
	switch el := item.(type) {
	case string:
		return strings.TrimSpace(el)
	case map[string]any:
		for _, key := range []string{"text", "message"} {
			if s, ok := el[key].(string); ok {
				if t := strings.TrimSpace(s); t != "" {
					return t
				}
			}
		}
		if content, ok := el["content"].([]any); ok {
			for _, part := range content {
				switch c := part.(type) {
				case string:
					if t := strings.TrimSpace(c); t != "" {
						return t
					}
				case map[string]any:
					if s, ok := c["text"].(string); ok {
						if t := strings.TrimSpace(s); t != "" {
							return t
						}
					}
				}
			}
		}
	}
	return ""
}

// tailOfLogs joins the last n non-blank-trimmed lines of a provider log dump.
// Some text models only surface their answer through the log stream.
func tailOfLogs(logs string, n int) string {
	logs = strings.TrimSpace(logs)
	if logs == "" {
		return ""
	}
	lines := strings.Split(logs, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}
