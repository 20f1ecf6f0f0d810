package features

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaError is returned when a trade batch does not carry the required fields.
// The whole batch is rejected; nothing is aggregated.
type SchemaError struct {
	// Missing lists required fields absent from every record of the batch.
	Missing []string

	// Invalid maps a required field to the indexes of records where it is
	// absent, null, empty (user_id) or not a finite number although other
	// records carry it.
	Invalid map[string][]int
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing columns: [%s]", strings.Join(e.Missing, ", "))
	}

	fields := e.InvalidFields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s (rows %v)", f, e.Invalid[f])
	}
	return fmt.Sprintf("invalid fields: %s", strings.Join(parts, ", "))
}

// Fields returns every field named by the error, missing fields first.
func (e *SchemaError) Fields() []string {
	fields := append([]string{}, e.Missing...)
	return append(fields, e.InvalidFields()...)
}

// InvalidFields returns the fields with invalid records, sorted for deterministic output.
func (e *SchemaError) InvalidFields() []string {
	fields := make([]string, 0, len(e.Invalid))
	for f := range e.Invalid {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
