package httpwire

import "strings"

// HeaderField is a single header line.
type HeaderField struct {
	Name  string
	Value string
}

// Header is an ordered multimap of header fields.
//
// Names compare case-insensitively; repeated names are kept in the order they
// were added. The zero value is an empty header ready to use.
type Header struct {
	fields []HeaderField
}

// Add appends a field, keeping any existing fields with the same name.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
}

// Set replaces all fields named name with a single field.
// The new field takes the position of the first removed one, or goes last.
func (h *Header) Set(name, value string) {
	idx := -1
	out := h.fields[:0]
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			if idx < 0 {
				idx = len(out)
				out = append(out, HeaderField{Name: name, Value: value})
			}
			continue
		}
		out = append(out, f)
	}
	h.fields = out
	if idx < 0 {
		h.Add(name, value)
	}
}

// Get returns the value of the first field named name, or "".
func (h Header) Get(name string) string {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Values returns the values of every field named name, in order.
func (h Header) Values(name string) []string {
	var vals []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			vals = append(vals, f.Value)
		}
	}
	return vals
}

// Has reports whether at least one field is named name.
func (h Header) Has(name string) bool {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Del removes every field named name.
func (h *Header) Del(name string) {
	out := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	h.fields = out
}

// Len returns the number of fields, counting repeats.
func (h Header) Len() int {
	return len(h.fields)
}

// Fields returns a copy of the fields in insertion order.
func (h Header) Fields() []HeaderField {
	out := make([]HeaderField, len(h.fields))
	copy(out, h.fields)
	return out
}

// Clone returns an independent copy of h.
func (h Header) Clone() Header {
	return Header{fields: h.Fields()}
}

// HasToken reports whether any comma-separated element of any field named
// name equals token, ignoring case and surrounding whitespace.
func (h Header) HasToken(name, token string) bool {
	for _, v := range h.Values(name) {
		for _, elem := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(elem), token) {
				return true
			}
		}
	}
	return false
}
