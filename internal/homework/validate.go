package homework

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// EmptyPolicy decides what an empty "homeworks" list means.
type EmptyPolicy string

const (
	// EmptyIsError treats an empty list as a protocol violation.
	EmptyIsError EmptyPolicy = "error"
	// EmptyIsNoop treats an empty list as "nothing to report".
	EmptyIsNoop EmptyPolicy = "skip"
)

// ParseEmptyPolicy accepts "", "error" and "skip".
func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch EmptyPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", EmptyIsError:
		return EmptyIsError, nil
	case EmptyIsNoop:
		return EmptyIsNoop, nil
	default:
		return "", fmt.Errorf("unknown empty homeworks policy %q (want error or skip)", s)
	}
}

// ResponseValidator checks the shape of a raw status API answer.
type ResponseValidator struct {
	policy EmptyPolicy
}

func NewResponseValidator(policy EmptyPolicy) *ResponseValidator {
	if policy == "" {
		policy = EmptyIsError
	}
	return &ResponseValidator{policy: policy}
}

// Validate walks raw and returns it typed, or a *SchemaError.
//
// Record fields are copied as-is; their content is judged by Tracker.Diff.
// A field of the wrong JSON type is copied as empty.
func (v *ResponseValidator) Validate(raw RawResponse) (StatusResponse, error) {
	if !gjson.ValidBytes(raw) {
		return StatusResponse{}, &SchemaError{Reason: "body is not valid JSON"}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return StatusResponse{}, &SchemaError{Reason: "response is not an object"}
	}

	list := root.Get("homeworks")
	if !list.Exists() {
		return StatusResponse{}, &SchemaError{Reason: `"homeworks" is missing`}
	}
	if !list.IsArray() {
		return StatusResponse{}, &SchemaError{Reason: `"homeworks" is not an array`}
	}

	date := root.Get("current_date")
	if date.Type != gjson.Number {
		return StatusResponse{}, &SchemaError{Reason: `"current_date" is missing or not a number`}
	}

	items := list.Array()
	if len(items) == 0 && v.policy == EmptyIsError {
		return StatusResponse{}, &SchemaError{Reason: `"homeworks" is empty`}
	}

	out := StatusResponse{
		Homeworks:   make([]Record, 0, len(items)),
		CurrentDate: date.Int(),
	}
	for i, item := range items {
		if !item.IsObject() {
			return StatusResponse{}, &SchemaError{Reason: fmt.Sprintf(`"homeworks[%d]" is not an object`, i)}
		}
		out.Homeworks = append(out.Homeworks, Record{
			Name:   stringField(item, "homework_name"),
			Status: Status(stringField(item, "status")),
		})
	}
	return out, nil
}

func stringField(obj gjson.Result, key string) string {
	f := obj.Get(key)
	if f.Type != gjson.String {
		return ""
	}
	return f.Str
}
