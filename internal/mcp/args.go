package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
)

// Tool arguments arrive as decoded JSON; clients differ in whether numbers
// are float64 or strings and whether lists are arrays or JSON text.

func stringArg(request mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(cast.ToString(request.GetArguments()[key]))
}

func intArg(request mcp.CallToolRequest, key string, def int) (int, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil || v == "" {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("argument %q must be a number", key)
	}
	return n, nil
}

func requireIntArg(request mcp.CallToolRequest, key string) (int, error) {
	if _, ok := request.GetArguments()[key]; !ok {
		return 0, fmt.Errorf("required argument %q not found", key)
	}
	return intArg(request, key, 0)
}

func boolArg(request mcp.CallToolRequest, key string) bool {
	return cast.ToBool(request.GetArguments()[key])
}

// stringsArg accepts an array, a JSON array string or a comma separated list
func stringsArg(request mcp.CallToolRequest, key string) ([]string, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if strings.HasPrefix(s, "[") {
			var out []string
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, fmt.Errorf("argument %q must be a list of strings", key)
			}
			return out, nil
		}
		var out []string
		for _, part := range strings.Split(s, ",") {
			out = append(out, strings.TrimSpace(part))
		}
		return out, nil
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("argument %q must be a list of strings", key)
	}
	return out, nil
}

// objectArg accepts an object or its JSON text
func objectArg(request mcp.CallToolRequest, key string) (map[string]any, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("argument %q must be a JSON object", key)
		}
		return out, nil
	}
	out, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("argument %q must be an object", key)
	}
	return out, nil
}
