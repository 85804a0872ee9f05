package clients

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Radarr talks to the movie-management service (api/v3).
type Radarr struct {
	c *httpClient
}

func NewRadarr(baseURL, apiKey string, timeout time.Duration) *Radarr {
	return &Radarr{
		c: newHTTPClient(baseURL, timeout, map[string]string{"X-Api-Key": apiKey}),
	}
}

func (r *Radarr) Configured() bool {
	return r != nil && r.c.baseURL != "" && r.c.headers["X-Api-Key"] != ""
}

type ArrPage[T any] struct {
	Page         int `json:"page"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
	Records      []T `json:"records"`
}

type RadarrMovie struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Monitored bool   `json:"monitored"`
	Status    string `json:"status"`
}

type ArrQueueItem struct {
	ID                    int     `json:"id"`
	Title                 string  `json:"title"`
	Status                string  `json:"status"`
	TrackedDownloadStatus string  `json:"trackedDownloadStatus"`
	Size                  float64 `json:"size"`
	Sizeleft              float64 `json:"sizeleft"`
	TimeLeft              string  `json:"timeleft"`
	Indexer               string  `json:"indexer"`
	DownloadClient        string  `json:"downloadClient"`
}

// GetWantedMissing returns monitored movies with no file on disk.
func (r *Radarr) GetWantedMissing(ctx context.Context, page, pageSize int) (*ArrPage[RadarrMovie], error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}
	params := pageParams(page, pageSize)
	params.Set("monitored", "true")

	var out ArrPage[RadarrMovie]
	if err := r.c.getJSON(ctx, "/api/v3/wanted/missing", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQueue returns the active download queue.
func (r *Radarr) GetQueue(ctx context.Context, page, pageSize int) (*ArrPage[ArrQueueItem], error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}
	var out ArrPage[ArrQueueItem]
	if err := r.c.getJSON(ctx, "/api/v3/queue", pageParams(page, pageSize), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageParams(page, pageSize int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}
	return params
}
