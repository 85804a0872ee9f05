// Package content merges wanted, missing and queue data from the two
// acquisition services into one summary.
package content

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/medialens/medialens/internal/clients"
	"github.com/medialens/medialens/internal/models"
)

const wantedPageSize = 50

// Aggregator issues the four upstream queries in parallel and tolerates
// each failing independently: a failed branch contributes an empty portion
// and never aborts its siblings.
type Aggregator struct {
	radarr *clients.Radarr
	sonarr *clients.Sonarr
}

func NewAggregator(radarr *clients.Radarr, sonarr *clients.Sonarr) *Aggregator {
	return &Aggregator{radarr: radarr, sonarr: sonarr}
}

// Summary fetches and merges everything. The call itself only fails when
// neither service is configured; individual upstream errors degrade their
// branch to empty.
func (a *Aggregator) Summary(ctx context.Context) (*models.ContentSummary, error) {
	if !a.radarr.Configured() && !a.sonarr.Configured() {
		return nil, clients.ErrNotConfigured
	}

	var (
		wg sync.WaitGroup

		wantedMovies []models.WantedItem
		missingEps   []models.WantedItem
		radarrQueue  []models.QueueItem
		sonarrQueue  []models.QueueItem

		// Each goroutine writes only its own flag; reads happen after
		// the Wait.
		radarrWantedFailed bool
		radarrQueueFailed  bool
		sonarrWantedFailed bool
		sonarrQueueFailed  bool
	)

	if a.radarr.Configured() {
		wg.Add(2)
		go func() {
			defer wg.Done()
			page, err := a.radarr.GetWantedMissing(ctx, 1, wantedPageSize)
			if err != nil {
				log.Printf("content: radarr wanted: %v", err)
				radarrWantedFailed = true
				return
			}
			for _, m := range page.Records {
				wantedMovies = append(wantedMovies, models.WantedItem{
					ID:            strconv.Itoa(m.ID),
					Title:         m.Title,
					Year:          m.Year,
					SourceService: "radarr",
				})
			}
		}()
		go func() {
			defer wg.Done()
			page, err := a.radarr.GetQueue(ctx, 1, wantedPageSize)
			if err != nil {
				log.Printf("content: radarr queue: %v", err)
				radarrQueueFailed = true
				return
			}
			radarrQueue = queueItems(page.Records, "radarr")
		}()
	}

	if a.sonarr.Configured() {
		wg.Add(2)
		go func() {
			defer wg.Done()
			page, err := a.sonarr.GetWantedMissing(ctx, 1, wantedPageSize)
			if err != nil {
				log.Printf("content: sonarr missing: %v", err)
				sonarrWantedFailed = true
				return
			}
			for _, ep := range page.Records {
				missingEps = append(missingEps, models.WantedItem{
					ID:            strconv.Itoa(ep.ID),
					Title:         episodeTitle(ep),
					Year:          ep.Series.Year,
					SourceService: "sonarr",
				})
			}
		}()
		go func() {
			defer wg.Done()
			page, err := a.sonarr.GetQueue(ctx, 1, wantedPageSize)
			if err != nil {
				log.Printf("content: sonarr queue: %v", err)
				sonarrQueueFailed = true
				return
			}
			sonarrQueue = queueItems(page.Records, "sonarr")
		}()
	}

	wg.Wait()

	queue := append(radarrQueue, sonarrQueue...)
	return &models.ContentSummary{
		WantedMovies:    wantedMovies,
		MissingEpisodes: missingEps,
		Queue:           queue,
		QueueCounts:     countQueue(queue),
		RadarrAvailable: a.radarr.Configured() && !radarrWantedFailed && !radarrQueueFailed,
		SonarrAvailable: a.sonarr.Configured() && !sonarrWantedFailed && !sonarrQueueFailed,
	}, nil
}

// queueItems normalizes one service's queue page, tagging each entry with
// the service it came from.
func queueItems(records []clients.ArrQueueItem, service string) []models.QueueItem {
	out := make([]models.QueueItem, 0, len(records))
	for _, q := range records {
		item := models.QueueItem{
			ID:            strconv.Itoa(q.ID),
			Title:         q.Title,
			Status:        strings.ToLower(q.Status),
			Size:          int64(q.Size),
			SizeRemaining: int64(q.Sizeleft),
			SourceService: service,
		}
		if q.Size > 0 {
			item.Progress = (q.Size - q.Sizeleft) / q.Size * 100
		}
		out = append(out, item)
	}
	return out
}

func episodeTitle(ep clients.SonarrEpisode) string {
	if ep.Series.Title == "" {
		return ep.Title
	}
	return ep.Series.Title + " - S" + pad2(ep.SeasonNumber) + "E" + pad2(ep.EpisodeNumber) + " - " + ep.Title
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func countQueue(queue []models.QueueItem) models.QueueCounts {
	var c models.QueueCounts
	for _, q := range queue {
		switch q.Status {
		case "downloading":
			c.Downloading++
		case "completed":
			c.Completed++
		case "failed", "warning":
			c.Failed++
		case "paused":
			c.Paused++
		}
	}
	return c
}
