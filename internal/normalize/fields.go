package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const maxConfidence = 100

// object decodes raw as a JSON object.
func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// objects decodes raw as an array and keeps the elements that are objects.
func objects(raw json.RawMessage) []map[string]json.RawMessage {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil
	}
	list := make([]map[string]json.RawMessage, 0, len(elements))
	for _, element := range elements {
		if obj, ok := object(element); ok {
			list = append(list, obj)
		}
	}
	return list
}

// str reads a JSON scalar as text. Objects, arrays and null read as the empty string.
func str(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return ""
		}
		return strconv.FormatBool(b)
	case '{', '[', 'n':
		return ""
	default:
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return ""
		}
		return num.String()
	}
}

// strList reads an array of scalars. A lone string is read as a single element list.
func strList(raw json.RawMessage) []string {
	list := []string{}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		if s := str(raw); s != "" {
			list = append(list, s)
		}
		return list
	}
	for _, element := range elements {
		if s := str(element); s != "" {
			list = append(list, s)
		}
	}
	return list
}

// number reads a JSON number or a numeric string such as "85%" or "5 km".
func number(raw json.RawMessage, suffixes ...string) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	for _, suffix := range suffixes {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// confidence reads a match confidence as an integer percentage within [0, 100].
func confidence(raw json.RawMessage) int {
	f, ok := number(raw, "%")
	if !ok {
		return 0
	}
	return int(math.Round(math.Min(math.Max(f, 0), maxConfidence)))
}

// radius reads a non-negative search radius in kilometres.
func radius(raw json.RawMessage) float64 {
	f, ok := number(raw, "km", "Km", "KM")
	if !ok || f < 0 {
		return 0
	}
	return f
}
