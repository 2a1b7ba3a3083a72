package mapping

import (
	"reflect"
	"strings"

	"github.com/neuronlabs/fancy/annotation"
)

// FieldTag is the key: values pair for the given field struct's tag.
type FieldTag struct {
	Key    string
	Values []string
}

// extractFieldTags extracts the field tags for given 'fieldTag' struct tag name.
// The tagSeparator and valuesSeparator are separator string value defined as follows:
//
// 	type Model struct {
//		Field string `fieldTag:"subtag=value1,value2;subtag2"`
//	}                     ^                  ^      ^
//                     fieldTag  valueSeparator   tagSeparator
func extractFieldTags(field reflect.StructField, fieldTag string) []*FieldTag {
	tag, ok := field.Tag.Lookup(fieldTag)
	if !ok {
		return nil
	}

	// omit the field with the '-' tag
	if tag == "-" {
		return []*FieldTag{{Key: "-"}}
	}

	var (
		separators []int
		tags       []*FieldTag
		options    []string
	)

	tagSeparatorRune := []rune(annotation.TagSeparator)[0]

	// find all the separators
	for i, r := range tag {
		if i != 0 && r == tagSeparatorRune {
			// check if the  rune before is not an 'escape'
			if tag[i-1] != '\\' {
				separators = append(separators, i)
			}
		}
	}

	for i, sep := range separators {
		if i == 0 {
			options = append(options, tag[:sep])
		} else {
			options = append(options, tag[separators[i-1]+1:sep])
		}

		if i == len(separators)-1 {
			options = append(options, tag[sep+1:])
		}
	}
	if options == nil {
		options = append(options, tag)
	}

	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		var equalIndex int
		for i, r := range o {
			if r == '=' && i != 0 && o[i-1] != '\\' {
				equalIndex = i
				break
			}
		}

		fTag := &FieldTag{}
		if equalIndex != 0 {
			fTag.Key = o[:equalIndex]
			fTag.Values = strings.Split(o[equalIndex+1:], annotation.Separator)
		} else {
			fTag.Key = o
		}
		tags = append(tags, fTag)
	}
	return tags
}

func findTag(tags []*FieldTag, keys ...string) (*FieldTag, bool) {
	for _, tag := range tags {
		for _, key := range keys {
			if tag.Key == key {
				return tag, true
			}
		}
	}
	return nil, false
}
