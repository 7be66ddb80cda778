package forms

import (
	"net/url"
	"strings"

	"weddingpress-web/internal/validation"
)

// FromPost collects every schema field from a posted form. Missing fields
// become empty so that unchecked checkboxes read as false.
func FromPost(schema validation.Schema, form url.Values) validation.Values {
	v := make(validation.Values, len(schema))
	for _, f := range schema {
		v[f.Name] = strings.TrimRight(form.Get(f.Name), "\r\n")
	}
	return v
}

// Schema returns the dialog's field schema
func (d *Dialog[T]) Schema() validation.Schema {
	return d.def.Schema
}
