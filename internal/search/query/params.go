// internal/search/query/params.go
package query

import (
	"net/url"
	"strings"
)

// Param is one key=value entry. Repeated keys are separate entries.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. The order is part of the value: two
// builds from equal inputs produce equal lists.
type Params []Param

func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value of key.
func (p Params) Get(key string) (string, bool) {
	for _, e := range p {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// String joins the entries unescaped. Used for logs and dedupe keys.
func (p Params) String() string {
	var b strings.Builder
	for i, e := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(e.Key)
		b.WriteByte('=')
		b.WriteString(e.Value)
	}
	return b.String()
}

// Encode returns the escaped query string, keeping insertion order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, e := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(e.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(e.Value))
	}
	return b.String()
}

func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for _, e := range p {
		v.Add(e.Key, e.Value)
	}
	return v
}

func (p Params) Equal(other Params) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
