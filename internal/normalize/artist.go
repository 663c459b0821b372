package normalize

import (
	"reflect"
	"sort"
	"strings"
	"time"
)

const (
	maxScanDepth    = 10
	maxArtistTracks = 50
	unknownArtist   = "Unknown Artist"
)

// ArtistPage is the aggregated view of an artist lookup.
type ArtistPage struct {
	Artist Artist  `json:"artist"`
	Tracks []Track `json:"tracks"`
	Albums []Album `json:"albums"`
}

type scanNode struct {
	value any
	depth int
}

type artistScan struct {
	artist Object
	tracks []Object
	albums []Object
}

func isTrackLike(o Object) bool {
	return o.HasAll("id", "title", "duration", "album")
}

func isAlbumLike(o Object) bool {
	return o.HasAll("id", "title", "cover")
}

func isArtistLike(o Object) bool {
	return o.HasAll("id", "name", "type")
}

// scanArtistPayload walks payload depth-first in pre-order with an explicit
// stack. Objects are visited at most once, keyed by map identity, and nothing
// deeper than maxScanDepth is expanded. Object keys are walked in sorted
// order so the result does not depend on map iteration.
func scanArtistPayload(payload any) artistScan {
	var res artistScan
	visited := make(map[uintptr]struct{})
	stack := []scanNode{{value: payload}}

	push := func(children []scanNode) {
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.depth > maxScanDepth {
			continue
		}

		if list, ok := node.value.([]any); ok {
			children := make([]scanNode, 0, len(list))
			for _, v := range list {
				children = append(children, scanNode{value: v, depth: node.depth + 1})
			}
			push(children)
			continue
		}

		obj, ok := AsObject(node.value)
		if !ok || len(obj) == 0 {
			continue
		}
		key := reflect.ValueOf(map[string]any(obj)).Pointer()
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		if res.artist == nil && isArtistLike(obj) {
			res.artist = obj
		}
		res.collectItems(obj)

		var children []scanNode
		if modules, ok := obj.List("modules"); ok {
			for _, m := range modules {
				module, ok := AsObject(m)
				if !ok {
					continue
				}
				if paged, ok := module.Object("pagedList"); ok {
					children = append(children, scanNode{value: paged, depth: node.depth + 1})
				}
				children = append(children, scanNode{value: module, depth: node.depth + 1})
			}
		}

		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			children = append(children, scanNode{value: obj[k], depth: node.depth + 1})
		}
		push(children)
	}

	return res
}

func (s *artistScan) collectItems(obj Object) {
	items, ok := obj.List("items")
	if !ok {
		return
	}
	for _, raw := range items {
		item, ok := AsObject(raw)
		if !ok {
			continue
		}
		if inner, present := item["item"]; present {
			if item, ok = AsObject(inner); !ok {
				continue
			}
		}
		switch {
		case isTrackLike(item):
			s.tracks = append(s.tracks, item)
		case isAlbumLike(item):
			s.albums = append(s.albums, item)
		}
	}
}

// ScanArtist aggregates an artist lookup payload of unknown depth into the
// artist, their top tracks by popularity (at most 50) and their albums
// newest first. artistID names the placeholder artist used when the payload
// identifies none.
func ScanArtist(payload any, artistID int64) ArtistPage {
	res := scanArtistPayload(payload)

	artistObj := res.artist
	if artistObj == nil && len(res.tracks) > 0 {
		artistObj, _ = res.tracks[0].Object("artist")
	}
	if artistObj == nil && len(res.albums) > 0 {
		artistObj, _ = res.albums[0].Object("artist")
	}

	page := ArtistPage{
		Tracks: Tracks(res.tracks),
		Albums: Albums(res.albums),
	}

	artist, ok := Artist{}, false
	if artistObj != nil {
		artist, ok = ArtistFromObject(artistObj)
	}
	if !ok {
		artist = Artist{ID: artistID, Name: unknownArtist}
		if artistObj != nil {
			if name := artistObj.String("name"); name != "" {
				artist.Name = name
			}
		}
	}
	page.Artist = artist

	sort.SliceStable(page.Tracks, func(i, j int) bool {
		return page.Tracks[i].Popularity > page.Tracks[j].Popularity
	})
	if len(page.Tracks) > maxArtistTracks {
		page.Tracks = page.Tracks[:maxArtistTracks]
	}

	sort.SliceStable(page.Albums, func(i, j int) bool {
		return releaseTimestamp(page.Albums[i].ReleaseDate) > releaseTimestamp(page.Albums[j].ReleaseDate)
	})

	return page
}

var releaseDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// releaseTimestamp parses an ISO-8601 release date into Unix seconds. Missing
// or unparsable dates count as zero.
func releaseTimestamp(date string) float64 {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return float64(t.UnixNano()) / float64(time.Second)
		}
	}
	return 0
}
