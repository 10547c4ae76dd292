package repository

import (
	"bytes"
	"cmp"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/kbukum/coreapi/errors"
)

// decode unmarshals body into out (a pointer) and classifies failures:
// malformed JSON, type mismatches, missing required keys and nulls for
// required values become CUSTOM_ERROR with the coding path; anything else is
// BAD_DATA.
func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return classifyDecodeError(err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return classifyDecodeError(err)
	}
	return checkRequired(reflect.TypeOf(out).Elem(), tree, nil)
}

func classifyDecodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return apperrors.DecodeFailure(
			fmt.Sprintf("data corrupted: %s (offset %d)", syntaxErr.Error(), syntaxErr.Offset), nil,
		).WithCause(err)
	case errors.As(err, &typeErr):
		return apperrors.DecodeFailure(
			fmt.Sprintf("type mismatch: expected %s but found %s", typeName(typeErr.Type), typeErr.Value),
			fieldPath(typeErr.Field),
		).WithCause(err)
	default:
		return apperrors.BadData(err)
	}
}

var (
	jsonUnmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	rawMessageType      = reflect.TypeFor[json.RawMessage]()
)

// checkRequired walks the decoded tree alongside t. A struct field is
// required unless it is a pointer, tagged omitempty/omitzero, or skipped with
// "-". Required fields must be present and non-null.
func checkRequired(t reflect.Type, v any, path []string) error {
	if v == nil {
		if nullable(t) {
			return nil
		}
		return apperrors.DecodeFailure(
			fmt.Sprintf("value not found: expected %s but found null", typeName(t)), path,
		)
	}
	if isLeaf(t) {
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return checkRequired(t.Elem(), v, path)
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		return checkStruct(t, obj, path)
	case reflect.Slice, reflect.Array:
		items, ok := v.([]any)
		if !ok {
			return nil
		}
		for i, item := range items {
			if err := checkRequired(t.Elem(), item, appendPath(path, "["+strconv.Itoa(i)+"]")); err != nil {
				return err
			}
		}
	case reflect.Map:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		for key, item := range obj {
			if err := checkRequired(t.Elem(), item, appendPath(path, key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkStruct(t reflect.Type, obj map[string]any, path []string) error {
	for _, f := range structFields(t) {
		optional := f.viaPointer || optionalField(f.typ, f.opts)
		v, present := lookupKey(obj, f.name)
		if !present {
			if optional {
				continue
			}
			return apperrors.DecodeFailure(fmt.Sprintf("key %q not found", f.name), path).
				WithDetail("key", f.name)
		}
		if v == nil && optional {
			continue
		}
		if err := checkRequired(f.typ, v, appendPath(path, f.name)); err != nil {
			return err
		}
	}
	return nil
}

// decodedField is a struct field encoding/json decodes into.
type decodedField struct {
	name       string
	tagged     bool
	index      []int
	typ        reflect.Type
	opts       string
	viaPointer bool
}

var fieldCache sync.Map // reflect.Type -> []decodedField

// structFields lists the fields encoding/json decodes into for t. Embedded
// structs are flattened breadth-first; for a repeated name the shallowest
// field wins, a tagged field beats untagged ones at the same depth, and
// names left ambiguous are dropped.
func structFields(t reflect.Type) []decodedField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]decodedField)
	}

	type queued struct {
		typ        reflect.Type
		index      []int
		viaPointer bool
	}

	var fields []decodedField
	next := []queued{{typ: t}}
	count, nextCount := map[reflect.Type]int{}, map[reflect.Type]int{t: 1}
	visited := map[reflect.Type]bool{}

	for len(next) > 0 {
		current := next
		next = nil
		count, nextCount = nextCount, map[reflect.Type]int{}

		for _, q := range current {
			if visited[q.typ] {
				continue
			}
			visited[q.typ] = true

			for i := 0; i < q.typ.NumField(); i++ {
				sf := q.typ.Field(i)
				if sf.Anonymous {
					et := sf.Type
					if et.Kind() == reflect.Pointer {
						et = et.Elem()
					}
					if !sf.IsExported() && et.Kind() != reflect.Struct {
						continue
					}
				} else if !sf.IsExported() {
					continue
				}
				name, opts, skip := jsonField(sf)
				if skip {
					continue
				}

				index := make([]int, len(q.index)+1)
				copy(index, q.index)
				index[len(q.index)] = i

				ft := sf.Type
				if ft.Name() == "" && ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}

				if name != "" || !sf.Anonymous || ft.Kind() != reflect.Struct {
					f := decodedField{
						name:       name,
						tagged:     name != "",
						index:      index,
						typ:        sf.Type,
						opts:       opts,
						viaPointer: q.viaPointer,
					}
					if f.name == "" {
						f.name = sf.Name
					}
					fields = append(fields, f)
					if count[q.typ] > 1 {
						// The same type embedded twice at one depth: both
						// copies annihilate below.
						fields = append(fields, f)
					}
					continue
				}

				nextCount[ft]++
				if nextCount[ft] == 1 {
					next = append(next, queued{
						typ:        ft,
						index:      index,
						viaPointer: q.viaPointer || sf.Type.Kind() == reflect.Pointer,
					})
				}
			}
		}
	}

	slices.SortStableFunc(fields, func(a, b decodedField) int {
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		if c := cmp.Compare(len(a.index), len(b.index)); c != 0 {
			return c
		}
		if a.tagged != b.tagged {
			if a.tagged {
				return -1
			}
			return 1
		}
		return slices.Compare(a.index, b.index)
	})

	out := fields[:0]
	for i := 0; i < len(fields); {
		j := i + 1
		for j < len(fields) && fields[j].name == fields[i].name {
			j++
		}
		if f, ok := dominantField(fields[i:j]); ok {
			out = append(out, f)
		}
		i = j
	}
	slices.SortFunc(out, func(a, b decodedField) int { return slices.Compare(a.index, b.index) })

	cached, _ := fieldCache.LoadOrStore(t, out)
	return cached.([]decodedField)
}

// dominantField picks the field that wins among fields sharing a name,
// sorted by depth then tag. ok is false when the name is ambiguous.
func dominantField(fields []decodedField) (decodedField, bool) {
	if len(fields) > 1 && len(fields[0].index) == len(fields[1].index) && fields[0].tagged == fields[1].tagged {
		return decodedField{}, false
	}
	return fields[0], true
}

// jsonField returns the JSON name and options of f, and whether it is
// skipped entirely.
func jsonField(f reflect.StructField) (name string, opts string, skip bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return "", "", false
	}
	if tag == "-" {
		return "", "", true
	}
	name, opts, _ = strings.Cut(tag, ",")
	return name, opts, false
}

func optionalField(t reflect.Type, opts string) bool {
	if t.Kind() == reflect.Pointer {
		return true
	}
	for _, o := range strings.Split(opts, ",") {
		if o == "omitempty" || o == "omitzero" {
			return true
		}
	}
	return false
}

// lookupKey matches the way encoding/json does: exact first, then
// case-insensitive.
func lookupKey(obj map[string]any, name string) (any, bool) {
	if v, ok := obj[name]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return true
	}
	return t == rawMessageType
}

// isLeaf reports types whose structure is owned by their own decoder.
func isLeaf(t reflect.Type) bool {
	if t == rawMessageType {
		return true
	}
	if t.Implements(jsonUnmarshalerType) || t.Implements(textUnmarshalerType) {
		return true
	}
	if t.Kind() != reflect.Pointer {
		pt := reflect.PointerTo(t)
		return pt.Implements(jsonUnmarshalerType) || pt.Implements(textUnmarshalerType)
	}
	return false
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

func fieldPath(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, ".")
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Pointer:
		return typeName(t.Elem())
	default:
		return t.String()
	}
}
