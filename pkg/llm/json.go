package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports oracle output that does not carry the expected JSON object.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("oracle output is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoJSON = errors.New("no JSON object found in response")

// IsParseError reports whether err (or anything it wraps) is a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ExtractJSON returns the text between the first '{' and the last '}'.
func ExtractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

// DecodeJSON extracts the JSON object from an oracle response and unmarshals it into out.
func DecodeJSON(response string, out interface{}) error {
	jsonContent := ExtractJSON(response)
	if jsonContent == "" {
		return &ParseError{Raw: response, Err: errNoJSON}
	}
	if err := json.Unmarshal([]byte(jsonContent), out); err != nil {
		return &ParseError{Raw: response, Err: err}
	}
	return nil
}

// StripCodeFence removes a surrounding ``` or ```markdown fence.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if nl := strings.Index(text, "\n"); nl != -1 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
