package clients

import (
	"context"
	"net/url"
	"time"
)

// Plex talks to the media server's library API. Responses are the nested
// MediaContainer → Metadata → Media → Part tree; normalization into the
// analysis model happens in the sources package, not here.
type Plex struct {
	c *httpClient
}

func NewPlex(baseURL, token string, timeout time.Duration) *Plex {
	return &Plex{c: newHTTPClient(baseURL, timeout, map[string]string{
		"X-Plex-Token": token,
	})}
}

func (p *Plex) Configured() bool {
	return p != nil && p.c.baseURL != ""
}

// ── Response shapes ──

type PlexSectionsResponse struct {
	MediaContainer struct {
		Size      int           `json:"size"`
		Directory []PlexSection `json:"Directory"`
	} `json:"MediaContainer"`
}

type PlexSection struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"` // "movie", "show", ...
}

type PlexItemsResponse struct {
	MediaContainer struct {
		Size      int        `json:"size"`
		TotalSize int        `json:"totalSize"`
		Metadata  []PlexItem `json:"Metadata"`
	} `json:"MediaContainer"`
}

type PlexItem struct {
	RatingKey        string      `json:"ratingKey"`
	Title            string      `json:"title"`
	GrandparentTitle string      `json:"grandparentTitle"` // show name for episodes
	Type             string      `json:"type"` // movie, show, season, episode
	Year             int         `json:"year"`
	Duration         int64       `json:"duration"` // milliseconds
	Genre            []PlexTag   `json:"Genre"`
	Media            []PlexMedia `json:"Media"`
}

type PlexTag struct {
	Tag string `json:"tag"`
}

type PlexMedia struct {
	Bitrate         int        `json:"bitrate"` // kbps
	VideoCodec      string     `json:"videoCodec"`
	VideoResolution string     `json:"videoResolution"` // "720", "1080", "4k"
	Container       string     `json:"container"`
	Part            []PlexPart `json:"Part"`
}

type PlexPart struct {
	File string `json:"file"`
	Size int64  `json:"size"`
}

// ── Calls ──

// GetLibraries lists library sections.
func (p *Plex) GetLibraries(ctx context.Context) (*PlexSectionsResponse, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}
	var resp PlexSectionsResponse
	if err := p.c.getJSON(ctx, "/library/sections", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLibraryItems lists the top-level items of one section (movies, or
// shows for TV sections).
func (p *Plex) GetLibraryItems(ctx context.Context, sectionID string) (*PlexItemsResponse, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}
	var resp PlexItemsResponse
	if err := p.c.getJSON(ctx, "/library/sections/"+sectionID+"/all", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLibraryItemsWithEpisodes resolves the show → season → episode
// hierarchy of a TV section by requesting episode-typed leaves directly.
func (p *Plex) GetLibraryItemsWithEpisodes(ctx context.Context, sectionID string) (*PlexItemsResponse, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}
	params := url.Values{"type": {"4"}} // 4 = episode leaves
	var resp PlexItemsResponse
	if err := p.c.getJSON(ctx, "/library/sections/"+sectionID+"/all", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
