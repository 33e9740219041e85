// Package jsonpatch computes RFC 6902 patches between two JSON documents.
// Object keys are visited in sorted order so the same pair of documents
// always yields the same patch.
package jsonpatch

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Operation is one RFC 6902 operation. Value is omitted for removals.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// MarshalJSON keeps "value" on add and replace even when it is null.
func (o Operation) MarshalJSON() ([]byte, error) {
	if o.Op == OpRemove {
		return json.Marshal(struct {
			Op   string `json:"op"`
			Path string `json:"path"`
		}{o.Op, o.Path})
	}
	return json.Marshal(struct {
		Op    string `json:"op"`
		Path  string `json:"path"`
		Value any    `json:"value"`
	}{o.Op, o.Path, o.Value})
}

const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
)

// Between marshals a and b to JSON and diffs the results.
func Between(a, b any) ([]Operation, error) {
	av, err := generic(a)
	if err != nil {
		return nil, err
	}
	bv, err := generic(b)
	if err != nil {
		return nil, err
	}
	return Diff(av, bv, ""), nil
}

func generic(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal patch document: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal patch document: %w", err)
	}
	return out, nil
}

// Diff computes the patch that transforms a into b. Both must be the
// result of unmarshaling into an interface{}. Use "" as path for the root.
func Diff(a, b any, path string) []Operation {
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		return []Operation{replace(path, b)}
	}

	aMap, aIsMap := a.(map[string]any)
	bMap, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		return diffObjects(aMap, bMap, path)
	}

	aArr, aIsArr := a.([]any)
	bArr, bIsArr := b.([]any)
	if aIsArr && bIsArr {
		return diffArrays(aArr, bArr, path)
	}

	if aIsMap || bIsMap || aIsArr || bIsArr || !reflect.DeepEqual(a, b) {
		return []Operation{replace(path, b)}
	}
	return nil
}

func diffObjects(a, b map[string]any, path string) []Operation {
	var ops []Operation

	for _, k := range sortedKeys(a) {
		if _, ok := b[k]; !ok {
			ops = append(ops, Operation{Op: OpRemove, Path: path + "/" + escapeKey(k)})
		}
	}

	for _, k := range sortedKeys(b) {
		child := path + "/" + escapeKey(k)
		av, ok := a[k]
		if !ok {
			ops = append(ops, Operation{Op: OpAdd, Path: child, Value: b[k]})
			continue
		}
		ops = append(ops, Diff(av, b[k], child)...)
	}
	return ops
}

func diffArrays(a, b []any, path string) []Operation {
	var ops []Operation
	common := min(len(a), len(b))

	for i := 0; i < common; i++ {
		ops = append(ops, Diff(a[i], b[i], path+"/"+strconv.Itoa(i))...)
	}
	// descending, so earlier removals do not shift later indexes
	for i := len(a) - 1; i >= common; i-- {
		ops = append(ops, Operation{Op: OpRemove, Path: path + "/" + strconv.Itoa(i)})
	}
	for i := common; i < len(b); i++ {
		ops = append(ops, Operation{Op: OpAdd, Path: path + "/" + strconv.Itoa(i), Value: b[i]})
	}
	return ops
}

func replace(path string, value any) Operation {
	return Operation{Op: OpReplace, Path: path, Value: value}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeKey escapes a JSON Pointer token per RFC 6901.
func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}
