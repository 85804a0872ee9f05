package clients

import (
	"context"
	"time"
)

// Sonarr talks to the series-management service (api/v3). Its page and queue
// shapes match the movie service's, so the generic page type is shared.
type Sonarr struct {
	c *httpClient
}

func NewSonarr(baseURL, apiKey string, timeout time.Duration) *Sonarr {
	return &Sonarr{
		c: newHTTPClient(baseURL, timeout, map[string]string{"X-Api-Key": apiKey}),
	}
}

func (s *Sonarr) Configured() bool {
	return s != nil && s.c.baseURL != "" && s.c.headers["X-Api-Key"] != ""
}

type SonarrEpisode struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	AirDateUTC    string `json:"airDateUtc"`
	Monitored     bool   `json:"monitored"`
	Series        struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
	} `json:"series"`
}

// GetWantedMissing returns monitored episodes with no file on disk.
func (s *Sonarr) GetWantedMissing(ctx context.Context, page, pageSize int) (*ArrPage[SonarrEpisode], error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	params := pageParams(page, pageSize)
	params.Set("includeSeries", "true")
	params.Set("monitored", "true")

	var out ArrPage[SonarrEpisode]
	if err := s.c.getJSON(ctx, "/api/v3/wanted/missing", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQueue returns the active download queue.
func (s *Sonarr) GetQueue(ctx context.Context, page, pageSize int) (*ArrPage[ArrQueueItem], error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	var out ArrPage[ArrQueueItem]
	if err := s.c.getJSON(ctx, "/api/v3/queue", pageParams(page, pageSize), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
