// Package options holds the ordered, string-keyed configuration passed to
// cores, containers and playbacks.
package options

import (
	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Recognized keys
const (
	SourceURL = "sourceUrl"
	MimeType  = "mimeType"
	StartAt   = "startAt"
	Autoplay  = "autoplay"
	Poster    = "poster"
	Live      = "live"
)

// Pair is a single key/value entry
type Pair struct {
	Key   string
	Value any
}

// Options is an insertion-ordered map from string keys to arbitrary values
type Options struct {
	values *orderedmap.OrderedMap[string, any]
}

// New creates options from pairs, keeping their order
func New(pairs ...Pair) *Options {
	o := &Options{values: orderedmap.New[string, any]()}
	for _, p := range pairs {
		o.Set(p.Key, p.Value)
	}
	return o
}

// Get returns the raw value stored under key
func (o *Options) Get(key string) (any, bool) {
	return o.values.Get(key)
}

// Has reports whether key is present
func (o *Options) Has(key string) bool {
	_, ok := o.values.Get(key)
	return ok
}

// Set stores value under key. Existing keys keep their position.
func (o *Options) Set(key string, value any) {
	o.values.Set(key, value)
}

// Delete removes key
func (o *Options) Delete(key string) {
	o.values.Delete(key)
}

// Len returns the number of keys
func (o *Options) Len() int {
	return o.values.Len()
}

// Keys returns the keys in insertion order
func (o *Options) Keys() []string {
	keys := make([]string, 0, o.values.Len())
	for pair := o.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Pairs returns a copy of the entries in insertion order
func (o *Options) Pairs() []Pair {
	pairs := make([]Pair, 0, o.values.Len())
	for pair := o.values.Oldest(); pair != nil; pair = pair.Next() {
		pairs = append(pairs, Pair{Key: pair.Key, Value: pair.Value})
	}
	return pairs
}

// Copy returns an independent snapshot
func (o *Options) Copy() *Options {
	return New(o.Pairs()...)
}

// Merge overlays every entry of other onto o, in other's order
func (o *Options) Merge(other *Options) {
	if other == nil {
		return
	}
	for _, p := range other.Pairs() {
		o.Set(p.Key, p.Value)
	}
}

// String returns the value under key as a string, "" when missing
func (o *Options) String(key string) string {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Float returns the value under key as a float64, 0 when missing or not numeric
func (o *Options) Float(key string) float64 {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

// Bool returns the value under key as a bool, false when missing
func (o *Options) Bool(key string) bool {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}

// ToMap flattens the options, losing order. Used for JSON output.
func (o *Options) ToMap() map[string]any {
	m := make(map[string]any, o.values.Len())
	for pair := o.values.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}
