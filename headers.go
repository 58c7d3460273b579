package httpcore

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

// OrderedHeaders records the wire order of header names a request or an
// emulation profile wants to emit. Names listed here come first, in the
// order given; names not listed follow in lexicographic order, since an
// http.Header map does not record insertion order.
type OrderedHeaders []string

// Clone returns a copy safe to retain independently of the receiver.
func (o OrderedHeaders) Clone() OrderedHeaders {
	if o == nil {
		return nil
	}
	out := make(OrderedHeaders, len(o))
	copy(out, o)
	return out
}

type keyValues struct {
	key    string
	values []string
}

// headerSorter implements sort.Interface over a []keyValues, ordered by a
// rank table when one is supplied, falling back to lexicographic order for
// names the table doesn't mention.
type headerSorter struct {
	kvs   []keyValues
	order map[string]int
}

func (s *headerSorter) Len() int      { return len(s.kvs) }
func (s *headerSorter) Swap(i, j int) { s.kvs[i], s.kvs[j] = s.kvs[j], s.kvs[i] }

func (s *headerSorter) Less(i, j int) bool {
	if len(s.order) == 0 {
		return s.kvs[i].key < s.kvs[j].key
	}
	si, iok := s.order[strings.ToLower(s.kvs[i].key)]
	sj, jok := s.order[strings.ToLower(s.kvs[j].key)]
	switch {
	case !iok && !jok:
		return s.kvs[i].key < s.kvs[j].key
	case !iok && jok:
		return false
	case iok && !jok:
		return true
	default:
		return si < sj
	}
}

var headerSorterPool = sync.Pool{New: func() any { return new(headerSorter) }}

// sortedKeyValues returns header's entries ordered per order (names listed
// in order come first, in listed order; unlisted names follow in
// lexicographic order). When order is empty the result is purely
// lexicographic.
func sortedKeyValues(header http.Header, order OrderedHeaders) []keyValues {
	sorter := headerSorterPool.Get().(*headerSorter)
	defer headerSorterPool.Put(sorter)

	if cap(sorter.kvs) < len(header) {
		sorter.kvs = make([]keyValues, 0, len(header))
	}
	kvs := sorter.kvs[:0]
	for k, vv := range header {
		kvs = append(kvs, keyValues{k, vv})
	}
	sorter.kvs = kvs

	if len(order) == 0 {
		sorter.order = nil
	} else {
		sorter.order = make(map[string]int, len(order))
		for i, name := range order {
			sorter.order[strings.ToLower(name)] = i
		}
	}
	sort.Sort(sorter)

	out := make([]keyValues, len(sorter.kvs))
	copy(out, sorter.kvs)
	return out
}

// sortHeaders returns dst's entries in the order described by orig (see
// sortedKeyValues). dst itself is not modified, and the order is not applied
// to what net/http writes on the wire.
func sortHeaders(dst http.Header, orig OrderedHeaders) []keyValues {
	return sortedKeyValues(dst, orig)
}

// mergeDefaults sets every key in defaults on dst that dst does not already
// define. Existing values always win; this is how an EmulationProvider's
// headers combine with a caller's explicit request headers.
func mergeDefaults(dst http.Header, defaults http.Header) {
	for k, vv := range defaults {
		if _, ok := dst[k]; ok {
			continue
		}
		cp := make([]string, len(vv))
		copy(cp, vv)
		dst[k] = cp
	}
}
