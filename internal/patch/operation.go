// Package patch applies JSON Patch (RFC 6902) and JSON Merge Patch (RFC 7396)
// documents to flat projections with a closed set of fields.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	jsonpatch "github.com/evanphx/json-patch"
)

const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
	OpMove    = "move"
	OpCopy    = "copy"
	OpTest    = "test"
)

var ErrEmptyDocument = errors.New("patch document cannot be null")

// Operation is one instruction of a patch document. Value holds the raw JSON
// value and is nil when the document omitted it.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

func Replace(path string, value any) Operation {
	b, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("patch: marshal value for %s: %v", path, err))
	}
	return Operation{Op: OpReplace, Path: path, Value: b}
}

// Decode parses a JSON Patch document, a JSON array of operation objects.
func Decode(body []byte) ([]Operation, error) {
	if isEmpty(body) {
		return nil, ErrEmptyDocument
	}

	doc, err := jsonpatch.DecodePatch(body)
	if err != nil {
		return nil, fmt.Errorf("decode json patch: %w", err)
	}

	ops := make([]Operation, 0, len(doc))
	for i, raw := range doc {
		path, err := raw.Path()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		op := Operation{Op: raw.Kind(), Path: path}

		if _, ok := raw["from"]; ok {
			from, err := raw.From()
			if err != nil {
				return nil, fmt.Errorf("operation %d: %w", i, err)
			}
			op.From = from
		}

		if v, ok := raw["value"]; ok {
			if v == nil {
				op.Value = json.RawMessage("null")
			} else {
				op.Value = append(json.RawMessage(nil), (*v)...)
			}
		}

		ops = append(ops, op)
	}

	return ops, nil
}

// DecodeMerge turns a merge patch object into replace operations, one per
// member, in key order. A null member becomes a remove.
func DecodeMerge(body []byte) ([]Operation, error) {
	if isEmpty(body) {
		return nil, ErrEmptyDocument
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode merge patch: %w", err)
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ops := make([]Operation, 0, len(keys))
	for _, k := range keys {
		v := doc[k]
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			ops = append(ops, Operation{Op: OpRemove, Path: "/" + k})
			continue
		}
		ops = append(ops, Operation{Op: OpReplace, Path: "/" + k, Value: v})
	}

	return ops, nil
}

func isEmpty(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
