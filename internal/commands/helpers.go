package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// parseInputs converts key=value CLI arguments into typed inputs. Values
// are coerced: "true"/"false" to bool, integers and floats to numbers,
// everything else stays a string.
func parseInputs(args []string) (map[string]any, error) {
	inputs := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("argument %q has an empty key", arg)
		}
		if _, dup := inputs[key]; dup {
			return nil, fmt.Errorf("input %q given more than once", key)
		}
		inputs[key] = coerce(value)
	}
	return inputs, nil
}

func coerce(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
