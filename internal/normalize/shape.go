package normalize

// Shape is one of the payload layouts the catalog is known to return.
// Payloads are classified once with Classify; callers then ask the shape for
// its entities instead of probing the raw value.
type Shape interface {
	items(key string) []any
}

// ListShape is a bare array of entities.
type ListShape struct {
	Elems []any
}

// WrapperShape is an array whose first element is an object carrying the
// requested key, e.g. [{"tracks": {"items": [...]}}].
type WrapperShape struct {
	Elems   []any
	Wrapper Object
}

// DictShape is a single object holding the entities under the requested key
// or under "items".
type DictShape struct {
	Fields Object
}

// Classify resolves payload into a Shape for the given entity key. It
// returns nil when the payload is empty or not a recognised layout.
func Classify(payload any, key string) Shape {
	switch v := payload.(type) {
	case []any:
		if len(v) == 0 {
			return nil
		}
		if first, ok := AsObject(v[0]); ok && first.Has(key) {
			return WrapperShape{Elems: v, Wrapper: first}
		}
		return ListShape{Elems: v}
	case []map[string]any:
		elems := make([]any, len(v))
		for i := range v {
			elems[i] = v[i]
		}
		return Classify(elems, key)
	default:
		if o, ok := AsObject(payload); ok && len(o) > 0 {
			return DictShape{Fields: o}
		}
	}
	return nil
}

func (s ListShape) items(string) []any {
	return s.Elems
}

func (s WrapperShape) items(key string) []any {
	switch nested := s.Wrapper[key].(type) {
	case []any:
		return nested
	default:
		if o, ok := AsObject(nested); ok && o.Has("items") {
			list, _ := o.List("items")
			return list
		}
	}
	return s.Elems
}

func (s DictShape) items(key string) []any {
	if nested, ok := s.Fields.Object(key); ok {
		list, _ := nested.List("items")
		return list
	}
	list, _ := s.Fields.List("items")
	return list
}
