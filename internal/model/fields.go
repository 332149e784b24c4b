package model

// usesBuiltInSlot reports whether field reads/writes a named Profile attribute.
// Tasks is list-valued and has its own editing path, so it falls through to
// the custom-field slot like any other non-scalar descriptor.
func usesBuiltInSlot(field FieldConfig) bool {
	return field.IsBuiltIn && field.BuiltInKey != "" && field.BuiltInKey != BuiltInTasks
}

// FieldValue returns the value stored for field on p. Absent data reads as "".
func FieldValue(p Profile, field FieldConfig) string {
	if usesBuiltInSlot(field) {
		switch field.BuiltInKey {
		case BuiltInQuote:
			return p.Quote
		case BuiltInContext:
			return p.Context
		case BuiltInDescription:
			return p.Description
		}
		return ""
	}
	if p.CustomFields == nil {
		return ""
	}
	return p.CustomFields[field.ID]
}

// SetFieldValue returns a copy of p with value written to field's slot.
// The input profile (including its customFields map) is left untouched.
func SetFieldValue(p Profile, field FieldConfig, value string) Profile {
	out := p
	if usesBuiltInSlot(field) {
		switch field.BuiltInKey {
		case BuiltInQuote:
			out.Quote = value
		case BuiltInContext:
			out.Context = value
		case BuiltInDescription:
			out.Description = value
		}
		return out
	}
	cf := make(map[string]string, len(p.CustomFields)+1)
	for k, v := range p.CustomFields {
		cf[k] = v
	}
	cf[field.ID] = value
	out.CustomFields = cf
	return out
}
