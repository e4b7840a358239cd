// Package payload reads loosely shaped webhook bodies. Scrapers and automation
// tools disagree on field names and types, so every lookup takes a list of
// candidate keys and accepts the value in whatever form it arrives.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	ErrEmptyBody    = eris.New("payload: empty body")
	ErrTrailingData = eris.New("payload: unexpected data after JSON value")
)

type Record map[string]any

// Decode accepts either a single JSON object or an array of objects.
func Decode(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '[' {
		var list []Record
		if err := dec.Decode(&list); err != nil {
			return nil, eris.Wrap(err, "payload: decode array")
		}
		if err := ensureEOF(dec); err != nil {
			return nil, err
		}
		return list, nil
	}

	var one Record
	if err := dec.Decode(&one); err != nil {
		return nil, eris.Wrap(err, "payload: decode object")
	}
	if err := ensureEOF(dec); err != nil {
		return nil, err
	}
	return []Record{one}, nil
}

func ensureEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

// String returns the first non-empty value among keys, stringifying numbers.
func (r Record) String(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// Int returns the first parseable count among keys. Strings such as
// "12,345", "1.2k" and "3M" are understood.
func (r Record) Int(keys ...string) int {
	for _, k := range keys {
		switch v := r[k].(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return int(math.Round(f))
			}
		case float64:
			return int(math.Round(v))
		case string:
			if n, ok := ParseCount(v); ok {
				return n
			}
		}
	}
	return 0
}

// Bool returns the first boolean-looking value among keys.
func (r Record) Bool(keys ...string) bool {
	for _, k := range keys {
		switch v := r[k].(type) {
		case bool:
			return v
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "1", "y":
				return true
			case "false", "no", "0", "n":
				return false
			}
		case json.Number:
			return v.String() != "0"
		case float64:
			return v != 0
		}
	}
	return false
}

// Strings returns the first list among keys. A comma separated string counts
// as a list.
func (r Record) Strings(keys ...string) []string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					if s = strings.TrimSpace(s); s != "" {
						out = append(out, s)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			var out []string
			for _, part := range strings.Split(v, ",") {
				if s := strings.TrimSpace(part); s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func ParseCount(raw string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'k':
		mult = 1e3
	case 'm':
		mult = 1e6
	case 'b':
		mult = 1e9
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	n := math.Round(f * mult)
	if math.IsNaN(n) || n <= math.MinInt64 || n >= math.MaxInt64 {
		return 0, false
	}
	return int(n), true
}
