package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record maps field names to extracted string values. Its shape depends on
// the source type that produced it.
type Record map[string]string

// ResultSet is the ordered collection of records produced by one crawl.
// Order is page order, then in-page extraction order.
type ResultSet []Record

// EncodeResultSet serializes records as an indented JSON array. HTML is not
// escaped so the stored text matches what was scraped.
func EncodeResultSet(rs ResultSet) (string, error) {
	if rs == nil {
		rs = ResultSet{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return "", fmt.Errorf("failed to encode result set: %w", err)
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// DecodeResultSet parses text produced by EncodeResultSet
func DecodeResultSet(data string) (ResultSet, error) {
	var rs ResultSet
	if err := json.Unmarshal([]byte(data), &rs); err != nil {
		return nil, fmt.Errorf("failed to decode result set: %w", err)
	}
	return rs, nil
}
