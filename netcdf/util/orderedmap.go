package util

import (
	"errors"
	"sort"
)

// OrderedMap is an attribute list: lookups by key, iteration in insertion
// order.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

var (
	ErrorKeysDontMatchValues = errors.New("keys don't match values")
)

func NewOrderedMap(keys []string, values map[string]any) (*OrderedMap, error) {
	if len(keys) != len(values) {
		return nil, ErrorKeysDontMatchValues
	}
	mapKeys := []string{}
	for k := range values {
		mapKeys = append(mapKeys, k)
	}
	sort.Strings(mapKeys)

	sortedKeys := make([]string, len(keys))
	copy(sortedKeys, keys)
	sort.Strings(sortedKeys)

	for i := range sortedKeys {
		if mapKeys[i] != sortedKeys[i] {
			return nil, ErrorKeysDontMatchValues
		}
	}
	if values == nil {
		values = map[string]any{}
	}
	return &OrderedMap{
		keys:   append([]string{}, keys...),
		values: values}, nil
}

// Add sets name to val. A new key goes to the end; an existing key keeps
// its position.
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

func (om *OrderedMap) Keys() []string {
	return om.keys
}

func (om *OrderedMap) Len() int {
	return len(om.keys)
}

// Clone returns a shallow copy: values are shared, key order is not.
func (om *OrderedMap) Clone() *OrderedMap {
	values := make(map[string]any, len(om.values))
	for k, v := range om.values {
		values[k] = v
	}
	return &OrderedMap{keys: append([]string{}, om.keys...), values: values}
}
