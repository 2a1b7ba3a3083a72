package query

import (
	"strings"

	"github.com/neuronlabs/fancy/annotation"
	"github.com/neuronlabs/fancy/mapping"
)

// Sort is the sorting field of the scope.
type Sort struct {
	Field      *mapping.StructField
	Descending bool
}

// String implements fmt.Stringer interface.
func (s *Sort) String() string {
	if s.Descending {
		return "-" + s.Field.NeuronName()
	}
	return s.Field.NeuronName()
}

// ParseOrdering parses the comma separated ordering parameter value i.e. 'title,-created_at'.
// The '-' prefix defines the descending order. Fields that are not within the 'allowed'
// fields are ignored. If 'allowed' is empty any model's stored field may be used.
func ParseOrdering(model *mapping.ModelStruct, raw string, allowed []*mapping.StructField) []*Sort {
	var sorts []*Sort
	for _, part := range strings.Split(raw, annotation.Separator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sort := &Sort{}
		if strings.HasPrefix(part, "-") {
			sort.Descending = true
			part = part[1:]
		}
		field, err := lookupField(model, part)
		if err != nil || field.IsRelationship() || !isAllowed(field, allowed) {
			continue
		}
		sort.Field = field
		sorts = append(sorts, sort)
	}
	return sorts
}

func isAllowed(field *mapping.StructField, allowed []*mapping.StructField) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == field {
			return true
		}
	}
	return false
}
