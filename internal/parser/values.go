package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// decodeMap decodes a mapping node into a generic map, or nil.
func decodeMap(node *yaml.Node) map[string]any {
	if node == nil {
		return nil
	}
	var out map[string]any
	if err := node.Decode(&out); err != nil {
		return nil
	}
	return out
}

// decodeStringList decodes a sequence node into strings, or nil.
func decodeStringList(node *yaml.Node) []string {
	if node == nil {
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil
	}
	return normalizeList(v)
}

// normalizeList turns a scalar or a sequence into a list of strings.
func normalizeList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, stringify(item))
		}
		return out
	}
	return nil
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func boolOf(v any) bool {
	b, _ := v.(bool)
	return b
}

func mapOf(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func stringMapOf(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = stringify(val)
	}
	return out
}

func rulesOf(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
