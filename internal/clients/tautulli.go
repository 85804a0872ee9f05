package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Tautulli talks to the usage-statistics server. Unlike the media server's
// nested tree, its library tables come back flat and pre-sortable.
type Tautulli struct {
	c      *httpClient
	apiKey string
}

func NewTautulli(baseURL, apiKey string, timeout time.Duration) *Tautulli {
	return &Tautulli{
		c:      newHTTPClient(baseURL, timeout, nil),
		apiKey: apiKey,
	}
}

func (t *Tautulli) Configured() bool {
	return t != nil && t.c.baseURL != "" && t.apiKey != ""
}

// MediaInfoQuery mirrors the statistics server's table-query parameters.
type MediaInfoQuery struct {
	OrderColumn string
	OrderDir    string
	Start       int
	Length      int
}

// ── Response shapes ──

type tautulliEnvelope struct {
	Response struct {
		Result  string          `json:"result"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"response"`
}

type TautulliLibrary struct {
	SectionID   FlexInt `json:"section_id"`
	SectionName string  `json:"section_name"`
	SectionType string  `json:"section_type"` // "movie", "show"
	Count       FlexInt `json:"count"`
}

type TautulliMediaInfoPage struct {
	Data          []TautulliMediaInfo `json:"data"`
	TotalFileSize int64               `json:"total_file_size"`
	RecordsTotal  FlexInt             `json:"recordsTotal"`
}

// TautulliMediaInfo is one flat table row. Numeric fields arrive as either
// numbers or strings depending on server version, hence FlexInt.
type TautulliMediaInfo struct {
	RatingKey       FlexInt `json:"rating_key"`
	Title           string  `json:"title"`
	MediaType       string  `json:"media_type"` // "movie", "episode", "show"
	FileSize        FlexInt `json:"file_size"`
	Bitrate         FlexInt `json:"bitrate"`
	VideoCodec      string  `json:"video_codec"`
	VideoResolution string  `json:"video_resolution"`
	Year            FlexInt `json:"year"`
}

// ── Calls ──

// GetLibraries lists library sections with item counts.
func (t *Tautulli) GetLibraries(ctx context.Context) ([]TautulliLibrary, error) {
	var libs []TautulliLibrary
	if err := t.call(ctx, "get_libraries", nil, &libs); err != nil {
		return nil, err
	}
	return libs, nil
}

// GetLibraryMediaInfo fetches one page of the flat media-info table for a
// section.
func (t *Tautulli) GetLibraryMediaInfo(ctx context.Context, sectionID string, q MediaInfoQuery) (*TautulliMediaInfoPage, error) {
	params := url.Values{
		"section_id": {sectionID},
	}
	if q.OrderColumn != "" {
		params.Set("order_column", q.OrderColumn)
	}
	if q.OrderDir != "" {
		params.Set("order_dir", q.OrderDir)
	}
	if q.Start > 0 {
		params.Set("start", strconv.Itoa(q.Start))
	}
	if q.Length > 0 {
		params.Set("length", strconv.Itoa(q.Length))
	}

	var page TautulliMediaInfoPage
	if err := t.call(ctx, "get_library_media_info", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// call issues one api/v2 command and unwraps the response envelope.
func (t *Tautulli) call(ctx context.Context, cmd string, params url.Values, dest any) error {
	if !t.Configured() {
		return ErrNotConfigured
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", t.apiKey)
	params.Set("cmd", cmd)

	var env tautulliEnvelope
	if err := t.c.getJSON(ctx, "/api/v2", params, &env); err != nil {
		return err
	}
	if env.Response.Result != "success" {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, cmd, env.Response.Message)
	}
	if dest != nil && len(env.Response.Data) > 0 {
		if err := json.Unmarshal(env.Response.Data, dest); err != nil {
			return fmt.Errorf("decode %s data: %w", cmd, err)
		}
	}
	return nil
}

// ── FlexInt ──

// FlexInt decodes JSON numbers that some server versions quote as strings.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" || string(data) == `""` {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		// Some fields arrive as floats.
		var fl float64
		if err2 := json.Unmarshal(data, &fl); err2 != nil {
			return err
		}
		*f = FlexInt(int64(fl))
		return nil
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) Int64() int64 { return int64(f) }
func (f FlexInt) Int() int     { return int(f) }
