// Package jsonfast provides a small append-only JSON object builder for fixed envelope schemas.
package jsonfast

import (
	"sort"
	"time"
)

const hexDigits = "0123456789abcdef"

// Builder appends one flat JSON object into a reusable buffer.
// Fields are written in call order; the object is opened by the first field.
type Builder struct {
	buf   []byte
	open  bool
	empty bool
}

// New creates a builder with the given initial capacity (256 when not positive)
func New(capacity int) *Builder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Builder{buf: make([]byte, 0, capacity), empty: true}
}

// Reset clears the builder for reuse
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
	b.open = false
	b.empty = true
}

// Bytes returns the underlying buffer; it is reused after Reset
func (b *Builder) Bytes() []byte {
	return b.buf
}

// BeginObject starts the object explicitly
func (b *Builder) BeginObject() {
	b.buf = append(b.buf, '{')
	b.open = true
	b.empty = true
}

// EndObject closes the object, opening it first if no field was written
func (b *Builder) EndObject() {
	if !b.open {
		b.BeginObject()
	}
	b.buf = append(b.buf, '}')
	b.open = false
}

// AddStringField adds "name":"value"
func (b *Builder) AddStringField(name, value string) {
	b.key(name)
	b.quoted(value)
}

// AddRawJSONField adds "name":<raw>; raw must be valid JSON, nil is written as null
func (b *Builder) AddRawJSONField(name string, raw []byte) {
	b.key(name)
	if raw == nil {
		b.buf = append(b.buf, "null"...)
		return
	}
	b.buf = append(b.buf, raw...)
}

// AddIntField adds "name":v
func (b *Builder) AddIntField(name string, v int) {
	b.key(name)
	b.buf = appendInt(b.buf, v)
}

// AddStringMapField adds "name":{"k":"v",...} with keys in sorted order.
// Empty maps are skipped.
func (b *Builder) AddStringMapField(name string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.key(name)
	b.buf = append(b.buf, '{')
	for i, k := range keys {
		if i > 0 {
			b.buf = append(b.buf, ',')
		}
		b.quoted(k)
		b.buf = append(b.buf, ':')
		b.quoted(m[k])
	}
	b.buf = append(b.buf, '}')
}

// AddTimeField adds "name":"YYYY-MM-DDTHH:MM:SS.mmmZ" in UTC without time.Format
func (b *Builder) AddTimeField(name string, t time.Time) {
	b.key(name)
	t = t.UTC()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	b.buf = append(b.buf, '"')
	b.digits(year, 4)
	b.buf = append(b.buf, '-')
	b.digits(int(month), 2)
	b.buf = append(b.buf, '-')
	b.digits(day, 2)
	b.buf = append(b.buf, 'T')
	b.digits(hour, 2)
	b.buf = append(b.buf, ':')
	b.digits(minute, 2)
	b.buf = append(b.buf, ':')
	b.digits(sec, 2)
	b.buf = append(b.buf, '.')
	b.digits(t.Nanosecond()/int(time.Millisecond), 3)
	b.buf = append(b.buf, 'Z', '"')
}

// key writes the separator and the quoted field name
func (b *Builder) key(name string) {
	switch {
	case !b.open:
		b.BeginObject()
	case !b.empty:
		b.buf = append(b.buf, ',')
	}
	b.empty = false
	b.quoted(name)
	b.buf = append(b.buf, ':')
}

// quoted appends s as a JSON string
func (b *Builder) quoted(s string) {
	b.buf = append(b.buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			b.buf = append(b.buf, '\\', c)
		case '\n':
			b.buf = append(b.buf, '\\', 'n')
		case '\r':
			b.buf = append(b.buf, '\\', 'r')
		case '\t':
			b.buf = append(b.buf, '\\', 't')
		case '\b':
			b.buf = append(b.buf, '\\', 'b')
		case '\f':
			b.buf = append(b.buf, '\\', 'f')
		default:
			if c < 0x20 {
				b.buf = append(b.buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0x0f])
				continue
			}
			b.buf = append(b.buf, c)
		}
	}
	b.buf = append(b.buf, '"')
}

// digits appends v zero-padded to width
func (b *Builder) digits(v, width int) {
	var tmp [8]byte
	for i := width - 1; i >= 0; i-- {
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	b.buf = append(b.buf, tmp[:width]...)
}

func appendInt(dst []byte, x int) []byte {
	if x == 0 {
		return append(dst, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	u := uint64(x)
	if x < 0 {
		u = uint64(-x)
	}
	for u > 0 {
		i--
		tmp[i] = byte('0' + u%10)
		u /= 10
	}
	if x < 0 {
		i--
		tmp[i] = '-'
	}
	return append(dst, tmp[i:]...)
}
