package sources

import (
	"context"
	"fmt"

	"github.com/medialens/medialens/internal/clients"
	"github.com/medialens/medialens/internal/models"
)

// plexSource adapts the media server's nested item tree into flat
// MediaFile records.
type plexSource struct {
	client *clients.Plex
}

func NewPlexSource(client *clients.Plex) Source {
	return &plexSource{client: client}
}

func (s *plexSource) Name() string { return "plex" }

func (s *plexSource) Libraries(ctx context.Context) ([]models.Library, error) {
	resp, err := s.client.GetLibraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("plex libraries: %w", err)
	}

	libs := make([]models.Library, 0, len(resp.MediaContainer.Directory))
	for _, d := range resp.MediaContainer.Directory {
		t, ok := libraryType(d.Type)
		if !ok {
			continue // music, photos, etc.
		}
		libs = append(libs, models.Library{
			ID:    d.Key,
			Title: d.Title,
			Type:  t,
		})
	}
	return libs, nil
}

func (s *plexSource) LibraryFiles(ctx context.Context, lib models.Library) ([]models.MediaFile, error) {
	var (
		resp *clients.PlexItemsResponse
		err  error
	)
	if lib.Type == models.LibraryTypeTVShows {
		resp, err = s.client.GetLibraryItemsWithEpisodes(ctx, lib.ID)
	} else {
		resp, err = s.client.GetLibraryItems(ctx, lib.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("plex library %s items: %w", lib.ID, err)
	}

	files := make([]models.MediaFile, 0, len(resp.MediaContainer.Metadata))
	for _, item := range resp.MediaContainer.Metadata {
		files = append(files, normalizePlexItem(item))
	}
	return files, nil
}

func normalizePlexItem(item clients.PlexItem) models.MediaFile {
	f := models.MediaFile{
		ID:         item.RatingKey,
		Title:      item.Title,
		FilePath:   models.UnknownLabel,
		Resolution: models.UnknownLabel,
		Codec:      models.UnknownLabel,
		Year:       item.Year,
		RuntimeMin: int(item.Duration / 60000),
		Type:       mediaType(item.Type),
	}
	if f.Type == models.MediaTypeEpisode {
		f.ShowName = item.GrandparentTitle
	}
	for _, g := range item.Genre {
		f.Genres = append(f.Genres, g.Tag)
	}

	// First media variant wins; additional versions of the same item are
	// not analyzed separately.
	if len(item.Media) > 0 {
		m := item.Media[0]
		f.Resolution = normalizeResolution(m.VideoResolution)
		f.Codec = normalizeCodec(m.VideoCodec)
		f.Bitrate = int64(m.Bitrate)
		if len(m.Part) > 0 {
			f.FilePath = orUnknown(m.Part[0].File)
			f.FileSize = m.Part[0].Size
		}
	}
	return f
}

func mediaType(plexType string) models.MediaType {
	switch plexType {
	case "episode":
		return models.MediaTypeEpisode
	case "show":
		return models.MediaTypeShow
	default:
		return models.MediaTypeMovie
	}
}

func libraryType(plexType string) (models.LibraryType, bool) {
	switch plexType {
	case "movie":
		return models.LibraryTypeMovies, true
	case "show":
		return models.LibraryTypeTVShows, true
	default:
		return "", false
	}
}
