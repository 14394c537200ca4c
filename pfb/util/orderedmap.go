package util

import (
	"errors"
	"sort"
)

// OrderedMap preserves insertion order of keys, which ordinary Go maps do not.
// Datasets expose variables in the order the manifest (or file) declared them.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

var ErrKeysDontMatchValues = errors.New("keys don't match values")

func NewOrderedMap(keys []string, values map[string]any) (*OrderedMap, error) {
	if len(keys) != len(values) {
		return nil, ErrKeysDontMatchValues
	}
	mapKeys := make([]string, 0, len(values))
	for k := range values {
		mapKeys = append(mapKeys, k)
	}
	sort.Strings(mapKeys)

	sortedKeys := make([]string, len(keys))
	copy(sortedKeys, keys)
	sort.Strings(sortedKeys)

	for i := range sortedKeys {
		if mapKeys[i] != sortedKeys[i] {
			return nil, ErrKeysDontMatchValues
		}
	}
	if values == nil {
		values = map[string]any{}
	}
	return &OrderedMap{
		keys:   append([]string(nil), keys...),
		values: values,
	}, nil
}

func (om *OrderedMap) Add(name string, val any) {
	if _, has := om.values[name]; !has {
		om.keys = append(om.keys, name)
	}
	om.values[name] = val
}

func (om *OrderedMap) Get(key string) (val any, has bool) {
	val, has = om.values[key]
	return
}

func (om *OrderedMap) Len() int {
	return len(om.keys)
}

func (om *OrderedMap) Keys() []string {
	return om.keys
}
