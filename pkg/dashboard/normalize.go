// Package dashboard holds the template toolkit: deterministic panel-id
// normalization, title slugging, and a JSON validity probe. It operates on
// in-memory dashboard structures and has no network dependency.
package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// FirstPanelID is where panel renumbering starts.
const FirstPanelID = 10

var whitespaceRun = regexp.MustCompile(`\s+`)

// RegenerateTemplateIDs reassigns every panel id in the dashboard's
// row/panel tree to a strictly increasing sequence starting at
// FirstPanelID. The counter runs continuously across row boundaries; rows
// without a panels field are skipped without advancing it. All other
// fields pass through untouched. The result is the serialized JSON of the
// whole structure. Re-running on the output produces the same canonical
// sequence: this is a normalization, not a diff-preserving patch.
func RegenerateTemplateIDs(raw []byte) ([]byte, error) {
	var doc map[string]interface{}

	// UseNumber keeps untouched numeric fields byte-stable on re-serialization.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	err := dec.Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}

	if rows, ok := doc["rows"].([]interface{}); ok {
		renumberPanels(rows, FirstPanelID)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing dashboard template: %w", err)
	}

	return out, nil
}

// renumberPanels walks rows in order, threading the next id through as an
// explicit accumulator, and returns the id that would be assigned next.
func renumberPanels(rows []interface{}, next int) int {
	for _, r := range rows {
		row, ok := r.(map[string]interface{})
		if !ok {
			continue
		}

		panels, ok := row["panels"].([]interface{})
		if !ok {
			continue
		}

		for _, p := range panels {
			panel, ok := p.(map[string]interface{})
			if !ok {
				continue
			}

			panel["id"] = next
			next++
		}
	}

	return next
}

// Slug normalizes a dashboard title into the form the by-slug endpoints
// expect. Titles carrying both whitespace and a hyphen get their
// whitespace runs removed; titles with whitespace only get each run
// replaced by a single hyphen; everything else is just lower-cased.
func Slug(title string) string {
	slug := strings.ToLower(title)

	hasWhitespace := whitespaceRun.MatchString(slug)
	hasHyphen := strings.Contains(slug, "-")

	switch {
	case hasWhitespace && hasHyphen:
		return whitespaceRun.ReplaceAllString(slug, "")
	case hasWhitespace:
		return whitespaceRun.ReplaceAllString(slug, "-")
	default:
		return slug
	}
}

// IsValidJSON reports whether text parses as JSON. Parse failures are
// swallowed: the whole point of the probe is a boolean answer.
func IsValidJSON(text string) bool {
	return gjson.Valid(text)
}
