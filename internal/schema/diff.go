// Package schema compares and generates search service resource definitions.
package schema

import (
	"fmt"
	"reflect"
	"sort"
)

// FieldChange names a field present in both schemas whose attributes differ.
type FieldChange struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
}

// IndexDiff describes how the fields of two index schemas differ.
type IndexDiff struct {
	Added   []string      `json:"added"`
	Removed []string      `json:"removed"`
	Changed []FieldChange `json:"changed"`
}

// KeyDiff describes how the top-level keys of two documents differ.
type KeyDiff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []string `json:"changed"`
}

// Empty reports whether the schemas have identical fields.
func (d IndexDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Empty reports whether the documents have identical top-level keys and values.
func (d KeyDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffIndex compares the "fields" arrays of two index schemas by field name.
func DiffIndex(before, after map[string]any) (IndexDiff, error) {
	oldFields, err := fieldsByName(before)
	if err != nil {
		return IndexDiff{}, fmt.Errorf("first schema: %w", err)
	}
	newFields, err := fieldsByName(after)
	if err != nil {
		return IndexDiff{}, fmt.Errorf("second schema: %w", err)
	}

	diff := IndexDiff{Added: []string{}, Removed: []string{}, Changed: []FieldChange{}}
	for name, field := range newFields {
		prev, ok := oldFields[name]
		if !ok {
			diff.Added = append(diff.Added, name)
			continue
		}
		if attrs := changedKeys(prev, field); len(attrs) > 0 {
			diff.Changed = append(diff.Changed, FieldChange{Name: name, Attributes: attrs})
		}
	}
	for name := range oldFields {
		if _, ok := newFields[name]; !ok {
			diff.Removed = append(diff.Removed, name)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Slice(diff.Changed, func(i, j int) bool { return diff.Changed[i].Name < diff.Changed[j].Name })
	return diff, nil
}

// DiffIndexer compares two indexer definitions key by key.
func DiffIndexer(before, after map[string]any) KeyDiff {
	diff := KeyDiff{Added: []string{}, Removed: []string{}, Changed: []string{}}
	for key, value := range after {
		prev, ok := before[key]
		if !ok {
			diff.Added = append(diff.Added, key)
			continue
		}
		if !reflect.DeepEqual(prev, value) {
			diff.Changed = append(diff.Changed, key)
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			diff.Removed = append(diff.Removed, key)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)
	return diff
}

func fieldsByName(doc map[string]any) (map[string]map[string]any, error) {
	raw, ok := doc["fields"]
	if !ok {
		return nil, fmt.Errorf("missing 'fields' array")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("'fields' must be an array")
	}

	fields := make(map[string]map[string]any, len(list))
	for i, item := range list {
		field, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %d is not an object", i)
		}
		name, _ := field["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("field %d has no name", i)
		}
		fields[name] = field
	}
	return fields, nil
}

func changedKeys(before, after map[string]any) []string {
	var keys []string
	for key, value := range after {
		if prev, ok := before[key]; !ok || !reflect.DeepEqual(prev, value) {
			keys = append(keys, key)
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
