package xmltree

import (
	"reflect"
	"slices"
	"strings"
)

// field describes an exported struct field that takes part in (de)serialization.
type field struct {
	Name  string
	Type  reflect.Type
	Index []int

	// written and read as attribute instead of child element
	Attr bool

	// zero values are not written
	OmitEmpty bool
}

// fieldsOf lists the fields of the struct type ty in declaration order. Fields of
// embedded structs are promoted. If multiple fields share a name, the least nested
// one wins, and on equal nesting the one with an explicit name in its struct tag
// wins. If still ambiguous, the name is dropped.
func fieldsOf(ty reflect.Type, structTag string) []field {
	if ty.Kind() != reflect.Struct {
		panic("not a struct")
	}

	type queued struct {
		Type        reflect.Type
		ParentIndex []int
	}

	type candidate struct {
		Explicit bool
		Field    field
	}

	queue := []queued{{Type: ty}}
	candidates := map[string][]candidate{}

	var order []string

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for idx := range item.Type.NumField() {
			fi := item.Type.Field(idx)
			if !fi.IsExported() {
				continue
			}

			tag := parseTag(fi, structTag)
			if tag.Skip {
				continue
			}

			// allocate a new slice by capping the parents index
			parent := item.ParentIndex
			index := append(parent[:len(parent):len(parent)], fi.Index...)

			if fi.Anonymous && !tag.Explicit {
				if fi.Type.Kind() == reflect.Struct {
					queue = append(queue, queued{fi.Type, index})
				}

				continue
			}

			if len(candidates[tag.Name]) == 0 {
				order = append(order, tag.Name)
			}

			candidates[tag.Name] = append(candidates[tag.Name], candidate{
				Explicit: tag.Explicit,
				Field: field{
					Name:      tag.Name,
					Type:      fi.Type,
					Index:     index,
					Attr:      tag.Attr,
					OmitEmpty: tag.OmitEmpty,
				},
			})
		}
	}

	var fields []field

	for _, name := range order {
		// walking breadth first keeps candidates sorted by nesting depth,
		// the visible ones are those with the smallest depth
		visible := candidates[name]
		depth := len(visible[0].Field.Index)
		visible = slices.DeleteFunc(visible, func(c candidate) bool { return len(c.Field.Index) != depth })

		if len(visible) > 1 {
			visible = slices.DeleteFunc(visible, func(c candidate) bool { return !c.Explicit })
		}

		if len(visible) == 1 {
			fields = append(fields, visible[0].Field)
		}
	}

	return fields
}

type fieldTag struct {
	Name      string
	Explicit  bool
	Skip      bool
	Attr      bool
	OmitEmpty bool
}

func parseTag(fi reflect.StructField, structTag string) fieldTag {
	tag := fi.Tag.Get(structTag)
	if tag == "-" {
		return fieldTag{Skip: true}
	}

	name, options, _ := strings.Cut(tag, ",")

	parsed := fieldTag{Name: name, Explicit: name != ""}
	if name == "" {
		parsed.Name = fi.Name
	}

	for option := range strings.SplitSeq(options, ",") {
		switch option {
		case "attr":
			parsed.Attr = true
		case "omitempty":
			parsed.OmitEmpty = true
		}
	}

	return parsed
}
