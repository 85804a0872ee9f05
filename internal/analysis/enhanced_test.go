package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialens/medialens/internal/cache"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/sources"
)

func newTestEnhancer(src *fakeSource, store cache.Store) *Enhancer {
	g := NewGenerator(sources.NewStaticSelector(src), store, time.Minute)
	return NewEnhancer(g, store, time.Hour)
}

func pathedMovie(id, path string, size int64) models.MediaFile {
	return models.MediaFile{
		ID: id, Title: id, FilePath: path, FileSize: size,
		Resolution: models.UnknownLabel, Codec: models.UnknownLabel,
		Type: models.MediaTypeMovie,
	}
}

func TestEnhancedAnalyze(t *testing.T) {
	src := &fakeSource{files: []models.MediaFile{
		pathedMovie("1", "/m/Movie.One.2160p.BluRay.REMUX.x265.10bit.HDR10.Atmos.mkv", 40*gib),
		pathedMovie("2", "/m/Movie.Two.1080p.WEB-DL.x264.mkv", 4*gib),
		pathedMovie("3", "/m/Movie.Three.480p.CAMRip.x264.mp4", 1*gib),
	}}
	e := newTestEnhancer(src, cache.Disabled{})

	a, err := e.Analyze(context.Background(), models.Library{ID: "1", Type: models.LibraryTypeMovies})
	require.NoError(t, err)

	require.Len(t, a.Files, 3)
	assert.Equal(t, "1", a.LibraryID)
	assert.Greater(t, a.AverageScore, 0.0)

	// Inference fills in what the source left unknown.
	assert.Equal(t, "H.265", a.Files[0].Codec)
	assert.Equal(t, "2160p", a.Files[0].Resolution)
	assert.Equal(t, "HDR10", a.Files[0].HDRFormat)
	assert.Equal(t, 10, a.Files[0].BitDepth)

	total := 0
	for _, n := range a.TierCounts {
		total += n
	}
	assert.Equal(t, 3, total, "every file lands in exactly one tier")

	require.NotEmpty(t, a.Codecs)
	codecTotal := 0.0
	for _, c := range a.Codecs {
		codecTotal += c.Percent
	}
	assert.InDelta(t, 100.0, codecTotal, 0.5)

	require.NotEmpty(t, a.HDRFormats)
	require.NotEmpty(t, a.BitDepths)
}

func TestEnhancedUpgradeListWorstFirst(t *testing.T) {
	src := &fakeSource{files: []models.MediaFile{
		pathedMovie("good", "/m/Good.2160p.BluRay.REMUX.x265.10bit.DV.Atmos.mkv", 40*gib),
		pathedMovie("bad", "/m/Bad.480p.CAMRip.x264.mp4", gib),
		pathedMovie("mid", "/m/Mid.720p.HDTV.x264.mkv", 2*gib),
	}}
	e := newTestEnhancer(src, cache.Disabled{})

	a, err := e.Analyze(context.Background(), models.Library{ID: "1"})
	require.NoError(t, err)

	require.NotEmpty(t, a.Upgrades)
	for i := 1; i < len(a.Upgrades); i++ {
		assert.LessOrEqual(t,
			a.Upgrades[i-1].File.QualityScore,
			a.Upgrades[i].File.QualityScore,
			"upgrades must be ranked worst first")
	}
	assert.Equal(t, "bad", a.Upgrades[0].File.ID)
}

func TestEnhancedUpgradeListCapped(t *testing.T) {
	var files []models.MediaFile
	for i := 0; i < 30; i++ {
		files = append(files, pathedMovie(
			fmt.Sprintf("f%d", i),
			fmt.Sprintf("/m/Movie.%d.480p.CAMRip.x264.mp4", i),
			gib,
		))
	}
	e := newTestEnhancer(&fakeSource{files: files}, cache.Disabled{})

	a, err := e.Analyze(context.Background(), models.Library{ID: "1"})
	require.NoError(t, err)
	assert.Len(t, a.Upgrades, maxUpgradeRecommendations)
}

func TestEnhancedH264SavingEstimate(t *testing.T) {
	size := int64(10 * gib)
	e := newTestEnhancer(&fakeSource{files: []models.MediaFile{
		pathedMovie("1", "/m/Movie.1080p.WEBRip.x264.mkv", size),
	}}, cache.Disabled{})

	a, err := e.Analyze(context.Background(), models.Library{ID: "1"})
	require.NoError(t, err)

	require.NotEmpty(t, a.Upgrades)
	rec := a.Upgrades[0]
	assert.Equal(t, int64(float64(size)*0.3), rec.EstimatedSaving)
	assert.Contains(t, rec.Suggestion, "H.265")
}

func TestEnrichFileServedFromCache(t *testing.T) {
	store := cache.NewMemory(0)
	defer store.Close()
	e := newTestEnhancer(&fakeSource{}, store)
	ctx := context.Background()

	f := pathedMovie("42", "/m/Movie.1080p.WEB-DL.x265.mkv", gib)
	first := e.EnrichFile(ctx, f)
	assert.Equal(t, "H.265", first.Codec)

	// A cache hit is a full replacement: changing the path must not
	// change the enriched result until the entry expires.
	f.FilePath = "/m/Renamed.480p.CAMRip.x264.mp4"
	second := e.EnrichFile(ctx, f)
	assert.Equal(t, first.Codec, second.Codec)
	assert.Equal(t, first.QualityScore, second.QualityScore)
}
