package tool

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Models send visit_id as either a JSON number or a string.
func visitIDArg(args map[string]any) (int64, error) {
	raw, ok := args["visit_id"]
	if !ok || raw == nil {
		return 0, fmt.Errorf("visit_id is required")
	}
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	id, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, fmt.Errorf("visit_id must be an integer: %v", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("visit_id must be positive")
	}
	return id, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%s is required", key)
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", fmt.Errorf("%s must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is empty", key)
	}
	return s, nil
}
