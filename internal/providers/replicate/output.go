package replicate

import (
	"encoding/json"
	"sort"
	"strings"
)

// FirstURL normalizes a finished prediction's output into a single usable
// media URL. Models place the result at varying nesting depths and key names,
// so the payload is decoded as a tagged union in fixed priority order: scalar
// string, array of strings, array whose first element is an object, then bare
// object. Object values are scanned in sorted key order so the result is
// deterministic. A missing URL is a normal outcome, not an error.
func FirstURL(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return urlShaped(s)
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) == 0 {
			return "", false
		}
		if err := json.Unmarshal(arr[0], &s); err == nil {
			return urlShaped(s)
		}
		return firstURLInObject(arr[0])
	}

	return firstURLInObject(raw)
}

func firstURLInObject(raw json.RawMessage) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var s string
		if err := json.Unmarshal(obj[k], &s); err != nil {
			continue
		}
		if url, ok := urlShaped(s); ok {
			return url, true
		}
	}
	return "", false
}

func urlShaped(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s, true
	}
	return "", false
}
