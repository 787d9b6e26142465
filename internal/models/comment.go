// Package models defines data structures shared by the collector and the analyzer.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Comment is a single archived comment. Fields the archive returns beyond
// body, author and created_utc are kept in Extra and written back unchanged.
type Comment struct {
	Extra      map[string]json.RawMessage `json:"-"`
	Body       string                     `json:"body"`
	Author     string                     `json:"author"`
	CreatedUTC int64                      `json:"created_utc"`
}

const (
	fieldBody       = "body"
	fieldAuthor     = "author"
	fieldCreatedUTC = "created_utc"
)

// UnmarshalJSON decodes the known fields and retains the rest.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Comment{}

	if v, ok := raw[fieldBody]; ok {
		if err := decodeNullableString(v, &c.Body); err != nil {
			return fmt.Errorf("comment body: %w", err)
		}

		delete(raw, fieldBody)
	}

	if v, ok := raw[fieldAuthor]; ok {
		if err := decodeNullableString(v, &c.Author); err != nil {
			return fmt.Errorf("comment author: %w", err)
		}

		delete(raw, fieldAuthor)
	}

	if v, ok := raw[fieldCreatedUTC]; ok {
		ts, err := decodeTimestamp(v)
		if err != nil {
			return fmt.Errorf("comment created_utc: %w", err)
		}

		c.CreatedUTC = ts

		delete(raw, fieldCreatedUTC)
	}

	if len(raw) > 0 {
		c.Extra = raw
	}

	return nil
}

// MarshalJSON writes the known fields together with any retained extras.
func (c Comment) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		out[k] = v
	}

	out[fieldBody] = c.Body
	out[fieldAuthor] = c.Author
	out[fieldCreatedUTC] = c.CreatedUTC

	return json.Marshal(out)
}

func decodeNullableString(v json.RawMessage, dst *string) error {
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil
	}

	return json.Unmarshal(v, dst)
}

// decodeTimestamp accepts integer and float unix seconds; some archive dumps
// carry created_utc as 1514764800.0.
func decodeTimestamp(v json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, err
	}

	if i, err := n.Int64(); err == nil {
		return i, nil
	}

	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, err
	}

	return int64(f), nil
}
