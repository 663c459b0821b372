package normalize

// AlbumListing is an album's track list with the album it belongs to.
type AlbumListing struct {
	Items []Track `json:"items"`
	Album *Album  `json:"album,omitempty"`
}

// AlbumTracks normalizes an album payload. The album object is the first
// list element (or the dict itself) when it carries an id and a title; each
// track's own album fields override the album object's, which only fill gaps.
func AlbumTracks(payload any) AlbumListing {
	listing := AlbumListing{Items: []Track{}}

	albumMeta := albumMetadata(payload)
	if albumMeta != nil {
		if a, ok := AlbumFromObject(albumMeta); ok {
			listing.Album = &a
		}
	}

	for _, raw := range ExtractTrackData(payload) {
		track := raw
		if inner, present := raw["item"]; present {
			o, ok := AsObject(inner)
			if !ok {
				continue
			}
			track = o
		}

		if albumMeta != nil {
			track = mergeAlbum(track, albumMeta)
		}

		if t, ok := TrackFromObject(track); ok {
			listing.Items = append(listing.Items, t)
		}
	}

	return listing
}

func albumMetadata(payload any) Object {
	switch s := Classify(payload, "items").(type) {
	case DictShape:
		if s.Fields.HasAll("id", "title") {
			return s.Fields
		}
	case WrapperShape:
		return albumFromFirst(s.Elems)
	case ListShape:
		return albumFromFirst(s.Elems)
	}
	return nil
}

func albumFromFirst(elems []any) Object {
	if first, ok := AsObject(elems[0]); ok && first.HasAll("id", "title") {
		return first
	}
	return nil
}

// mergeAlbum returns a copy of track whose "album" is album overlaid with the
// track's own album fields. The input objects are left untouched.
func mergeAlbum(track, album Object) Object {
	merged := track.Clone()

	own, isObject := track.Object("album")
	switch {
	case isObject && len(own) > 0:
		combined := album.Clone()
		for k, v := range own {
			combined[k] = v
		}
		merged["album"] = combined
	case isObject, isFalsy(track["album"]):
		merged["album"] = album
	}
	return merged
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case []any:
		return len(x) == 0
	}
	return false
}
