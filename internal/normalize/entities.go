package normalize

import "github.com/samber/lo"

const unknownName = "Unknown"

// Track is a normalized catalog track.
type Track struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album,omitempty"`
	Duration   int     `json:"duration,omitempty"`
	Cover      string  `json:"cover,omitempty"`
	Quality    string  `json:"quality,omitempty"`
	Popularity float64 `json:"popularity,omitempty"`
}

// ArtistRef is the artist an album or track points at.
type ArtistRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Album is a normalized catalog album.
type Album struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Cover           string     `json:"cover,omitempty"`
	Artist          *ArtistRef `json:"artist,omitempty"`
	ReleaseDate     string     `json:"releaseDate,omitempty"`
	NumberOfTracks  int        `json:"numberOfTracks,omitempty"`
	NumberOfVolumes int        `json:"numberOfVolumes,omitempty"`
}

// Artist is a normalized catalog artist.
type Artist struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Picture    string  `json:"picture,omitempty"`
	Type       string  `json:"type,omitempty"`
	Popularity float64 `json:"popularity,omitempty"`
}

// TrackFromObject converts a raw track. Tracks without an identifier are
// rejected.
func TrackFromObject(o Object) (Track, bool) {
	id, ok := o.Int("id")
	if !ok {
		return Track{}, false
	}

	t := Track{
		ID:      id,
		Title:   o.String("title"),
		Artist:  ArtistName(o),
		Quality: o.String("audioQuality"),
	}
	if t.Title == "" {
		t.Title = unknownName
	}
	if d, ok := o.Int("duration"); ok {
		t.Duration = int(d)
	}
	if p, ok := o.Float("popularity"); ok {
		t.Popularity = p
	}
	if album, ok := o.Object("album"); ok {
		t.Album = album.String("title")
		t.Cover = album.String("cover")
	}
	if t.Cover == "" {
		t.Cover = o.String("cover")
	}
	return t, true
}

// ArtistName reads the display artist of a track: an "artist" object or
// string, else the first of "artists", else "Unknown".
func ArtistName(o Object) string {
	if o.Has("artist") {
		switch a := o["artist"].(type) {
		case string:
			if a != "" {
				return a
			}
		default:
			if ao, ok := AsObject(a); ok {
				if name := ao.String("name"); name != "" {
					return name
				}
			}
		}
		return unknownName
	}
	if artists, ok := o.List("artists"); ok && len(artists) > 0 {
		if first, ok := AsObject(artists[0]); ok {
			if name := first.String("name"); name != "" {
				return name
			}
		}
	}
	return unknownName
}

func artistRef(o Object) *ArtistRef {
	switch a := o["artist"].(type) {
	case string:
		if a != "" {
			return &ArtistRef{Name: a}
		}
	default:
		if ao, ok := AsObject(a); ok {
			id, _ := ao.Int("id")
			return &ArtistRef{ID: id, Name: ao.String("name")}
		}
	}
	if artists, ok := o.List("artists"); ok && len(artists) > 0 {
		if first, ok := AsObject(artists[0]); ok {
			id, _ := first.Int("id")
			return &ArtistRef{ID: id, Name: first.String("name")}
		}
	}
	return nil
}

// AlbumFromObject converts a raw album. Albums without an identifier are
// rejected.
func AlbumFromObject(o Object) (Album, bool) {
	id, ok := o.Int("id")
	if !ok {
		return Album{}, false
	}
	a := Album{
		ID:          id,
		Title:       o.String("title"),
		Cover:       o.String("cover"),
		Artist:      artistRef(o),
		ReleaseDate: o.String("releaseDate"),
	}
	if n, ok := o.Int("numberOfTracks"); ok {
		a.NumberOfTracks = int(n)
	}
	if n, ok := o.Int("numberOfVolumes"); ok {
		a.NumberOfVolumes = int(n)
	}
	return a, true
}

// ArtistFromObject converts a raw artist. Artists without an identifier are
// rejected.
func ArtistFromObject(o Object) (Artist, bool) {
	id, ok := o.Int("id")
	if !ok {
		return Artist{}, false
	}
	a := Artist{
		ID:      id,
		Name:    o.String("name"),
		Picture: o.String("picture"),
		Type:    o.String("type"),
	}
	if p, ok := o.Float("popularity"); ok {
		a.Popularity = p
	}
	return a, true
}

// Tracks converts every raw object that is a valid track.
func Tracks(objs []Object) []Track {
	return lo.FilterMap(objs, func(o Object, _ int) (Track, bool) {
		return TrackFromObject(o)
	})
}

// Albums converts every raw object that is a valid album.
func Albums(objs []Object) []Album {
	return lo.FilterMap(objs, func(o Object, _ int) (Album, bool) {
		return AlbumFromObject(o)
	})
}

// Artists converts every raw object that is a valid artist.
func Artists(objs []Object) []Artist {
	return lo.FilterMap(objs, func(o Object, _ int) (Artist, bool) {
		return ArtistFromObject(o)
	})
}
