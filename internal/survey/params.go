package survey

import "strconv"

// Value is a parameter value with a single canonical text form. Keeping the
// coercion rule in one place avoids formatting drift between the signing
// string and the query string.
type Value interface {
	Text() string
}

type String string

func (s String) Text() string { return string(s) }

type Int int64

func (i Int) Text() string { return strconv.FormatInt(int64(i), 10) }

type Float float64

func (f Float) Text() string { return strconv.FormatFloat(float64(f), 'f', -1, 64) }

type Bool bool

func (b Bool) Text() string { return strconv.FormatBool(bool(b)) }

type Pair struct {
	Key   string
	Value Value
}

// Params is an ordered parameter set. Insertion order decides query string
// order; canonicalization sorts a copy, so it never matters for signing.
type Params struct {
	pairs []Pair
}

func NewParams() *Params {
	return &Params{}
}

// Set adds a parameter, replacing the value in place if the key exists.
func (p *Params) Set(key string, value Value) *Params {
	for i := range p.pairs {
		if p.pairs[i].Key == key {
			p.pairs[i].Value = value
			return p
		}
	}
	p.pairs = append(p.pairs, Pair{Key: key, Value: value})
	return p
}

func (p *Params) Get(key string) (Value, bool) {
	for _, pair := range p.pairs {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return nil, false
}

func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.pairs)
}

// Pairs returns the entries in insertion order.
func (p *Params) Pairs() []Pair {
	if p == nil {
		return nil
	}
	out := make([]Pair, len(p.pairs))
	copy(out, p.pairs)
	return out
}

func (p *Params) Clone() *Params {
	clone := NewParams()
	if p != nil {
		clone.pairs = append(clone.pairs, p.pairs...)
	}
	return clone
}
