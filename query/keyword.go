package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/neuronlabs/fancy/annotation"
	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/errors"
)

// Keyword is the single filter keyword parsed from the query parameters.
// The Key is the lookup path i.e. 'author__name__icontains' and the Value is already
// type coerced. The Raw value is the unmodified query parameter value.
type Keyword struct {
	Key   string
	Value interface{}
	Raw   string
}

// NewKeyword creates new keyword with the given 'key' and 'value'.
func NewKeyword(key string, value interface{}) *Keyword {
	k := &Keyword{Key: key, Value: value}
	if s, ok := value.(string); ok {
		k.Raw = s
	} else if value != nil {
		k.Raw = fmt.Sprint(value)
	}
	return k
}

// String implements fmt.Stringer interface.
func (k *Keyword) String() string {
	return fmt.Sprintf("%s=%v", k.Key, k.Value)
}

// ParseParams translates the query parameters into the filter keywords.
// The reserved parameters (search, ordering, pagination etc.) are skipped.
// For each remaining parameter its last value is coerced:
//	- parameters with the '__in' suffix are literal evaluated and the non sequence values
//	  are wrapped into a single value sequence,
//	- 'null', 'true' and 'false' values are converted into nil, true and false,
//	- if the type casting is enabled, values containing '.' are parsed as float64
//	  and the others as int64. If the parsing fails the value stays a string.
// The keywords are sorted by their keys.
func ParseParams(values url.Values, settings *config.Fancy) ([]*Keyword, error) {
	if settings == nil {
		settings = config.DefaultFancy()
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var keywords []*Keyword
	for _, key := range keys {
		if settings.IsReserved(key) || len(values[key]) == 0 {
			continue
		}
		raw := values[key][len(values[key])-1]
		value, err := coerceParam(key, raw, settings.TypeCasting)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, &Keyword{Key: key, Value: value, Raw: raw})
	}
	return keywords, nil
}

func coerceParam(key, raw string, typeCasting bool) (interface{}, error) {
	if strings.HasSuffix(key, annotation.LookupSeparator+OpIn.Lookup) {
		value, err := LiteralEval(raw)
		if err != nil {
			if e, ok := err.(*errors.DetailedError); ok {
				e.WrapDetailsf("query parameter: '%s'", key)
			}
			return nil, err
		}
		if seq, ok := value.([]interface{}); ok {
			return seq, nil
		}
		return []interface{}{value}, nil
	}

	switch raw {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if !typeCasting {
		return raw, nil
	}
	if strings.Contains(raw, ".") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, nil
		}
		return raw, nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i, nil
	}
	return raw, nil
}
