package normalize

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var manifestURLPattern = regexp.MustCompile(`https?://[^\s"]+`)

// ExtractItems returns the entity objects for key ("tracks", "albums",
// "artists") from a bare list, a list of wrappers or a dict payload.
func ExtractItems(payload any, key string) []Object {
	shape := Classify(payload, key)
	if shape == nil {
		return []Object{}
	}
	return objects(shape.items(key))
}

// ExtractTrackData returns the raw track listing of an album payload: the
// "items" of the first list element that has them, or of the dict itself.
func ExtractTrackData(payload any) []Object {
	switch s := Classify(payload, "items").(type) {
	case DictShape:
		list, _ := s.Fields.List("items")
		return objects(list)
	case WrapperShape:
		return firstItems(s.Elems)
	case ListShape:
		return firstItems(s.Elems)
	}
	return []Object{}
}

func firstItems(elems []any) []Object {
	for _, e := range elems {
		if o, ok := AsObject(e); ok && o.Has("items") {
			list, _ := o.List("items")
			return objects(list)
		}
	}
	return []Object{}
}

// ExtractStreamURL resolves the playable URL of a track payload. Direct
// OriginalTrackUrl fields win over manifests; a manifest is base64 text that
// is read as JSON ("urls"[0]) first and scanned for a bare URL second.
// It returns "" when no entry yields a URL.
func ExtractStreamURL(payload any) string {
	var entries []any
	switch v := payload.(type) {
	case []any:
		entries = v
	default:
		entries = []any{payload}
	}

	for _, e := range entries {
		if o, ok := AsObject(e); ok {
			if u := o.String("OriginalTrackUrl"); u != "" {
				return u
			}
		}
	}

	for _, e := range entries {
		o, ok := AsObject(e)
		if !ok {
			continue
		}
		manifest := o.String("manifest")
		if manifest == "" {
			continue
		}
		if u := urlFromManifest(manifest); u != "" {
			return u
		}
	}
	return ""
}

func urlFromManifest(manifest string) string {
	decoded, ok := decodeManifest(manifest)
	if !ok {
		return ""
	}

	if gjson.Valid(decoded) {
		if first := gjson.Get(decoded, "urls.0"); first.Type == gjson.String && first.Str != "" {
			return first.Str
		}
	}

	return manifestURLPattern.FindString(decoded)
}

func decodeManifest(manifest string) (string, bool) {
	manifest = strings.TrimSpace(manifest)
	raw, err := base64.StdEncoding.DecodeString(manifest)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(manifest, "="))
		if err != nil {
			return "", false
		}
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// TrackObject returns the track description in a track lookup payload: the
// payload itself when it is an object, else its first element.
func TrackObject(payload any) (Object, bool) {
	switch v := payload.(type) {
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		return AsObject(v[0])
	case []map[string]any:
		if len(v) == 0 {
			return nil, false
		}
		return AsObject(v[0])
	}
	return AsObject(payload)
}
