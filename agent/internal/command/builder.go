package command

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownType marks a task type with no registered builder. Such tasks are
// never handed to the executor.
var ErrUnknownType = errors.New("unknown task type")

// BuilderFunc translates a task's params into an argument vector for the maa
// binary. Builders validate param shape defensively; a bad payload is a local
// failure, not an executor invocation.
type BuilderFunc func(binary string, params map[string]any) ([]string, error)

var registry = map[string]BuilderFunc{}

// Register adds a builder for a task type. Later registrations replace
// earlier ones, so deployments can override the built-ins.
func Register(taskType string, b BuilderFunc) { registry[taskType] = b }

// Build resolves the builder for taskType and produces the command vector.
func Build(binary, taskType string, params map[string]any) ([]string, error) {
	b, ok := registry[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, taskType)
	}
	return b(binary, params)
}

func init() {
	Register("LinkStart", func(binary string, _ map[string]any) ([]string, error) {
		return []string{binary, "run", "daily"}, nil
	})
	Register("Fight", func(binary string, params map[string]any) ([]string, error) {
		stage, err := stringParam(params, "stage")
		if err != nil {
			return nil, err
		}
		return []string{binary, "fight", stage}, nil
	})
}

// stringParam extracts a required scalar param as a string, accepting the
// number form JSON decoding may have produced.
func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required param %q", key)
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", fmt.Errorf("missing required param %q", key)
		}
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	default:
		return "", fmt.Errorf("param %q has unsupported type %T", key, v)
	}
}
