package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// autoDelimiters are tried in order when a list field does not pin a
// delimiter. The last one is the fallback when none appear in the
// value, which yields a single-element list.
var autoDelimiters = []string{"\n", ",", "|", "\t"}

// splitDelimited breaks a raw string into list items. When delimiter is
// empty the separator is auto-detected from the value. A value that
// starts with the separator (a common layout for multi-line lists) does
// not contribute a leading empty item, and every item is trimmed.
func splitDelimited(value, delimiter string) []string {
	if delimiter == "" {
		delimiter = autoDelimiters[len(autoDelimiters)-1]
		for _, candidate := range autoDelimiters {
			if strings.Contains(value, candidate) {
				delimiter = candidate
				break
			}
		}
	}
	parts := strings.Split(value, delimiter)
	items := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" && (i == 0 || i == len(parts)-1) {
			continue
		}
		items = append(items, part)
	}
	return items
}

// literalNormalizer rewrites single-quoted, Pythonish literals into
// JSON so values copied from another config dialect still parse.
var literalNormalizer = strings.NewReplacer(
	"'", `"`,
	"True", "true",
	"False", "false",
	"None", "null",
)

// parseLiteral decodes a bracketed value into out, first as JSON and
// then, tolerantly, after normalizing quotes and constants. A value
// that survives neither attempt is a hard error naming both.
func parseLiteral(value string, out any) error {
	jsonErr := json.Unmarshal([]byte(value), out)
	if jsonErr == nil {
		return nil
	}
	if litErr := json.Unmarshal([]byte(literalNormalizer.Replace(value)), out); litErr != nil {
		return fmt.Errorf("could not be parsed as JSON (%v) or as a quoted literal (%v)", jsonErr, litErr)
	}
	return nil
}

// parseRawList turns a raw value into list items. Sequences pass
// through; strings beginning with "[" must parse as a list literal,
// everything else is split on the delimiter.
func parseRawList(raw any, delimiter string) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			var parsed []any
			if err := parseLiteral(trimmed, &parsed); err != nil {
				return nil, err
			}
			return parsed, nil
		}
		items := splitDelimited(v, delimiter)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, nil
	default:
		return []any{v}, nil
	}
}

// parseRawMap turns a raw value into key/value pairs. Subtrees pass
// through and strings beginning with "{" must parse as a map literal.
// ok reports whether the value was map-shaped at all.
func parseRawMap(raw any) (pairs RawTree, ok bool, err error) {
	if tree, isTree := asTree(raw); isTree {
		return tree, true, nil
	}
	s, isString := raw.(string)
	if !isString {
		return nil, false, nil
	}
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false, nil
	}
	var parsed map[string]any
	if err := parseLiteral(trimmed, &parsed); err != nil {
		return nil, false, err
	}
	return RawTree(parsed), true, nil
}
