package gateway

import (
	"encoding/json"
	"strings"

	"github.com/sakif/scriptgenie/internal/apperror"
)

// ExtractJSON pulls the JSON document embedded in free-form model text and
// unmarshals it strictly into v.
//
// Models asked for "JSON only" still regularly wrap the payload in prose or
// markdown fences ("Here's your result:\n```json\n{...}\n```"). We take the
// slice from the first opening bracket to the LAST matching closing bracket
// and require it to parse. Anything else — no brackets, or brackets around
// something that isn't valid JSON — fails with a distinct upstream error, so
// a chatty model shows up in logs as "malformed model output", not as a
// generic 500.
//
// v follows the json.Unmarshal contract (pointer to struct or slice).
func ExtractJSON(raw string, v any) error {
	candidate, ok := boundedJSON(raw)
	if !ok {
		return apperror.Upstream("AI response did not contain a JSON payload")
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return apperror.Upstream("AI response contained invalid JSON")
	}
	return nil
}

// boundedJSON returns the substring from the first '{' or '[' to the last
// matching '}' or ']'. Greedy on the close bracket: the outermost document
// wins even when it nests objects or arrays.
func boundedJSON(raw string) (string, bool) {
	objStart := strings.IndexByte(raw, '{')
	arrStart := strings.IndexByte(raw, '[')

	start, close := objStart, byte('}')
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start, close = arrStart, ']'
	}
	if start == -1 {
		return "", false
	}

	end := strings.LastIndexByte(raw, close)
	if end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
