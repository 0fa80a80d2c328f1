package exodus

import "sort"

// idMap maps set IDs to 1-based ordinals and back.
type idMap struct {
	byID      map[int32]int
	byOrdinal map[int]int32
}

func newIDMap() idMap {
	return idMap{byID: make(map[int32]int), byOrdinal: make(map[int]int32)}
}

// add records that id lives at ordinal. Neither may be mapped already.
func (m idMap) add(id int32, ordinal int) bool {
	if _, has := m.byID[id]; has {
		return false
	}
	if _, has := m.byOrdinal[ordinal]; has {
		return false
	}
	m.byID[id] = ordinal
	m.byOrdinal[ordinal] = id
	return true
}

func (m idMap) remove(id int32) {
	if ordinal, has := m.byID[id]; has {
		delete(m.byOrdinal, ordinal)
		delete(m.byID, id)
	}
}

func (m idMap) ordinal(id int32) (int, bool) {
	ordinal, has := m.byID[id]
	return ordinal, has
}

func (m idMap) id(ordinal int) (int32, bool) {
	id, has := m.byOrdinal[ordinal]
	return id, has
}

// nextFree returns the lowest ordinal in 1..max without an ID.
func (m idMap) nextFree(max int) (int, bool) {
	for ordinal := 1; ordinal <= max; ordinal++ {
		if _, has := m.byOrdinal[ordinal]; !has {
			return ordinal, true
		}
	}
	return 0, false
}

// ids returns the mapped IDs in ordinal order.
func (m idMap) ids() []int32 {
	ordinals := make([]int, 0, len(m.byOrdinal))
	for ordinal := range m.byOrdinal {
		ordinals = append(ordinals, ordinal)
	}
	sort.Ints(ordinals)
	ids := make([]int32, len(ordinals))
	for i, ordinal := range ordinals {
		ids[i] = m.byOrdinal[ordinal]
	}
	return ids
}
