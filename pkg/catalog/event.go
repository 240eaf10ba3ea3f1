package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Kind is the category of a performance.
type Kind string

const (
	KindOpera  Kind = "opera"
	KindBallet Kind = "ballet"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindOpera || k == KindBallet
}

// Filter selects which kind of events is currently shown.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterOpera  Filter = "opera"
	FilterBallet Filter = "ballet"
)

// Filters lists every filter value in display order.
var Filters = []Filter{FilterAll, FilterOpera, FilterBallet}

// ParseFilter converts user input into a Filter. The empty string maps to FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterOpera, FilterBallet:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, opera or ballet)", s)
}

// Valid reports whether f is a member of the closed filter set.
func (f Filter) Valid() bool {
	return f == FilterAll || f == FilterOpera || f == FilterBallet
}

// Kind returns the kind the filter is scoped to. ok is false for FilterAll,
// which maps to an unscoped query.
func (f Filter) Kind() (kind Kind, ok bool) {
	switch f {
	case FilterOpera:
		return KindOpera, true
	case FilterBallet:
		return KindBallet, true
	}
	return "", false
}

// Next cycles to the following filter, wrapping around.
func (f Filter) Next() Filter {
	for i, v := range Filters {
		if v == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// ID is the opaque identifier assigned by the catalog store. Stores that hand
// out numeric ids are accepted as well and kept in their decimal form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid event id %s", data)
	}
	*id = ID(strconv.FormatInt(n, 10))
	return nil
}

// Event is one catalog entry. Events are only ever built from what the store
// returns; the client never assigns an ID itself.
type Event struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Cover    string `json:"cover"`
	Composer string `json:"composer"`
	Type     Kind   `json:"type"`
}

// Matches reports whether the event is visible under filter f.
func (e Event) Matches(f Filter) bool {
	kind, scoped := f.Kind()
	return !scoped || e.Type == kind
}

// ErrNotFound is returned by catalog stores when no event has the requested ID.
var ErrNotFound = errors.New("event not found")
