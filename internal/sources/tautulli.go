package sources

import (
	"context"
	"fmt"
	"strconv"

	"github.com/medialens/medialens/internal/clients"
	"github.com/medialens/medialens/internal/models"
)

// tautulliPageSize bounds one table request; the adapter pages until it has
// every row.
const tautulliPageSize = 1000

// tautulliSource adapts the statistics server's flat media-info table into
// MediaFile records. Rows come back pre-sorted by file size descending,
// which the size analysis relies on only as an optimization; the analysis
// layer re-sorts regardless.
type tautulliSource struct {
	client *clients.Tautulli
}

func NewTautulliSource(client *clients.Tautulli) Source {
	return &tautulliSource{client: client}
}

func (s *tautulliSource) Name() string { return "tautulli" }

func (s *tautulliSource) Libraries(ctx context.Context) ([]models.Library, error) {
	raw, err := s.client.GetLibraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("tautulli libraries: %w", err)
	}

	libs := make([]models.Library, 0, len(raw))
	for _, l := range raw {
		t, ok := libraryType(l.SectionType)
		if !ok {
			continue
		}
		libs = append(libs, models.Library{
			ID:        strconv.FormatInt(l.SectionID.Int64(), 10),
			Title:     l.SectionName,
			Type:      t,
			ItemCount: l.Count.Int(),
		})
	}
	return libs, nil
}

func (s *tautulliSource) LibraryFiles(ctx context.Context, lib models.Library) ([]models.MediaFile, error) {
	var files []models.MediaFile
	for start := 0; ; start += tautulliPageSize {
		page, err := s.client.GetLibraryMediaInfo(ctx, lib.ID, clients.MediaInfoQuery{
			OrderColumn: "file_size",
			OrderDir:    "desc",
			Start:       start,
			Length:      tautulliPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("tautulli library %s media info: %w", lib.ID, err)
		}
		for _, row := range page.Data {
			files = append(files, normalizeTautulliRow(row))
		}
		if len(page.Data) == 0 || len(files) >= page.RecordsTotal.Int() {
			break
		}
	}
	return files, nil
}

func normalizeTautulliRow(row clients.TautulliMediaInfo) models.MediaFile {
	return models.MediaFile{
		ID:         strconv.FormatInt(row.RatingKey.Int64(), 10),
		Title:      orUnknown(row.Title),
		FilePath:   models.UnknownLabel, // table rows carry no path
		FileSize:   row.FileSize.Int64(),
		Resolution: normalizeResolution(row.VideoResolution),
		Codec:      normalizeCodec(row.VideoCodec),
		Bitrate:    row.Bitrate.Int64(),
		Year:       row.Year.Int(),
		Type:       mediaType(row.MediaType),
	}
}
