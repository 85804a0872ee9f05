package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/medialens/medialens/internal/cache"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/sources"
)

// Fixed size-distribution bucket bounds, in bytes.
const (
	gib = int64(1 << 30)
)

var sizeBuckets = []struct {
	label string
	min   int64 // inclusive
	max   int64 // exclusive, 0 = unbounded
}{
	{"<1GB", 0, 1 * gib},
	{"1-5GB", 1 * gib, 5 * gib},
	{"5-10GB", 5 * gib, 10 * gib},
	{"10-20GB", 10 * gib, 20 * gib},
	{">20GB", 20 * gib, 0},
}

// Generator produces per-library analyses from whichever data source the
// selector resolves. File snapshots are cached per library; the derived
// analysis is recomputed per request, so pagination never fragments the
// cache.
type Generator struct {
	selector *sources.Selector
	store    cache.Store
	ttl      time.Duration
}

func NewGenerator(selector *sources.Selector, store cache.Store, ttl time.Duration) *Generator {
	return &Generator{selector: selector, store: store, ttl: ttl}
}

// ──────────────────── Analysis ────────────────────

// Analyze builds the full analysis for one library. Offset/limit apply to
// the size listings only; breakdown percentages are always computed over
// the complete library.
func (g *Generator) Analyze(ctx context.Context, lib models.Library, offset, limit int) (*models.LibraryAnalysis, error) {
	src, err := g.selector.Pick()
	if err != nil {
		return nil, err
	}

	files, err := g.libraryFiles(ctx, src, lib)
	if err != nil {
		return nil, err
	}

	a := &models.LibraryAnalysis{
		LibraryID:   lib.ID,
		LibraryType: lib.Type,
		Source:      src.Name(),
		Size:        sizeAnalysis(files, offset, limit),
		Quality:     qualityAnalysis(files),
		Content:     contentAnalysis(files),
	}
	return a, nil
}

// Files returns the normalized file snapshot for a library, from cache when
// fresh.
func (g *Generator) Files(ctx context.Context, lib models.Library) ([]models.MediaFile, error) {
	src, err := g.selector.Pick()
	if err != nil {
		return nil, err
	}
	return g.libraryFiles(ctx, src, lib)
}

func (g *Generator) libraryFiles(ctx context.Context, src sources.Source, lib models.Library) ([]models.MediaFile, error) {
	key := "files:" + src.Name() + ":" + lib.ID

	var cached []models.MediaFile
	if g.store.Get(ctx, key, &cached) {
		return cached, nil
	}

	files, err := src.LibraryFiles(ctx, lib)
	if err != nil {
		return nil, err
	}
	g.store.Set(ctx, key, files, g.ttl)
	return files, nil
}

// ──────────────────── Size ────────────────────

func sizeAnalysis(files []models.MediaFile, offset, limit int) models.SizeAnalysis {
	aggregated, episodes := AggregateShows(files)

	sortBySizeDesc(aggregated)
	sortBySizeDesc(episodes)

	var total int64
	for _, f := range files {
		total += f.FileSize
	}
	var avg int64
	if len(files) > 0 {
		avg = total / int64(len(files))
	}

	sa := models.SizeAnalysis{
		LargestFiles: paginate(aggregated, offset, limit),
		Distribution: distribution(files, total),
		TotalSize:    total,
		AverageSize:  avg,
		FileCount:    len(files),
		Pagination:   models.NewPagination(offset, limit, len(aggregated)),
	}
	if len(episodes) > 0 {
		sa.EpisodeBreakdown = paginate(episodes, offset, limit)
	}
	return sa
}

// AggregateShows collapses episode rows into one record per show, leaving
// movies untouched. The second return value is the raw episode list, empty
// for movie libraries. Per show, file sizes are summed and the most common
// resolution and codec become representative, first seen winning ties.
func AggregateShows(files []models.MediaFile) (aggregated, episodes []models.MediaFile) {
	type group struct {
		show     models.MediaFile
		resVotes map[string]int
		resOrder []string
		cdcVotes map[string]int
		cdcOrder []string
	}
	var (
		order  []string
		groups = map[string]*group{}
	)

	for _, f := range files {
		if f.Type != models.MediaTypeEpisode {
			aggregated = append(aggregated, f)
			continue
		}
		episodes = append(episodes, f)

		name := ShowName(f)
		grp, ok := groups[name]
		if !ok {
			grp = &group{
				show: models.MediaFile{
					ID:       "show:" + name,
					Title:    name,
					FilePath: models.UnknownLabel,
					Type:     models.MediaTypeShow,
					ShowName: name,
				},
				resVotes: map[string]int{},
				cdcVotes: map[string]int{},
			}
			groups[name] = grp
			order = append(order, name)
		}
		grp.show.FileSize += f.FileSize
		grp.show.EpisodeCount++
		if _, seen := grp.resVotes[f.Resolution]; !seen {
			grp.resOrder = append(grp.resOrder, f.Resolution)
		}
		grp.resVotes[f.Resolution]++
		if _, seen := grp.cdcVotes[f.Codec]; !seen {
			grp.cdcOrder = append(grp.cdcOrder, f.Codec)
		}
		grp.cdcVotes[f.Codec]++
	}

	for _, name := range order {
		grp := groups[name]
		grp.show.Resolution = modal(grp.resVotes, grp.resOrder)
		grp.show.Codec = modal(grp.cdcVotes, grp.cdcOrder)
		aggregated = append(aggregated, grp.show)
	}
	return aggregated, episodes
}

// ShowName infers the show a row belongs to: the explicit field when the
// source provides it, otherwise the title up to the first " - " separator.
func ShowName(f models.MediaFile) string {
	if f.ShowName != "" {
		return f.ShowName
	}
	if idx := indexSep(f.Title); idx >= 0 {
		return f.Title[:idx]
	}
	return f.Title
}

func indexSep(title string) int {
	for i := 0; i+3 <= len(title); i++ {
		if title[i:i+3] == " - " {
			return i
		}
	}
	return -1
}

// modal returns the highest-voted value, breaking ties by first-seen order.
func modal(votes map[string]int, order []string) string {
	best, bestN := models.UnknownLabel, 0
	for _, v := range order {
		if votes[v] > bestN {
			best, bestN = v, votes[v]
		}
	}
	return best
}

func distribution(files []models.MediaFile, total int64) []models.SizeBucket {
	out := make([]models.SizeBucket, len(sizeBuckets))
	for i, b := range sizeBuckets {
		out[i].Label = b.label
	}
	counted := 0
	for _, f := range files {
		if f.FileSize <= 0 {
			continue
		}
		counted++
		for i, b := range sizeBuckets {
			if f.FileSize >= b.min && (b.max == 0 || f.FileSize < b.max) {
				out[i].Count++
				out[i].TotalSize += f.FileSize
				break
			}
		}
	}

	// Empty buckets are omitted.
	kept := out[:0]
	for _, b := range out {
		if b.Count == 0 {
			continue
		}
		b.Percent = percent(b.Count, counted)
		kept = append(kept, b)
	}
	return kept
}

func sortBySizeDesc(files []models.MediaFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].FileSize > files[j].FileSize
	})
}

// paginate slices a pre-sorted list. The all-items sentinel bypasses
// slicing entirely.
func paginate(files []models.MediaFile, offset, limit int) []models.MediaFile {
	if limit == models.LimitAll {
		return files
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(files) {
		return []models.MediaFile{}
	}
	end := offset + limit
	if limit <= 0 || end > len(files) {
		end = len(files)
	}
	return files[offset:end]
}

// ──────────────────── Quality / content ────────────────────

func qualityAnalysis(files []models.MediaFile) models.QualityAnalysis {
	return models.QualityAnalysis{
		Resolutions: breakdown(files, func(f models.MediaFile) []string {
			return []string{f.Resolution}
		}),
		Codecs: breakdown(files, func(f models.MediaFile) []string {
			return []string{f.Codec}
		}),
	}
}

func contentAnalysis(files []models.MediaFile) models.ContentAnalysis {
	return models.ContentAnalysis{
		Genres: breakdown(files, func(f models.MediaFile) []string {
			return f.Genres
		}),
		Years: breakdown(files, func(f models.MediaFile) []string {
			if f.Year <= 0 {
				return nil
			}
			return []string{decade(f.Year)}
		}),
		Runtimes: breakdown(files, func(f models.MediaFile) []string {
			if f.RuntimeMin <= 0 {
				return nil
			}
			return []string{runtimeBucket(f.RuntimeMin)}
		}),
	}
}

// breakdown histograms one attribute over the full set, labels ordered by
// descending count then first seen.
func breakdown(files []models.MediaFile, keys func(models.MediaFile) []string) []models.BreakdownEntry {
	var (
		counts = map[string]int{}
		order  []string
	)
	for _, f := range files {
		for _, k := range keys(f) {
			if k == "" {
				k = models.UnknownLabel
			}
			if _, seen := counts[k]; !seen {
				order = append(order, k)
			}
			counts[k]++
		}
	}

	out := make([]models.BreakdownEntry, 0, len(order))
	for _, k := range order {
		out = append(out, models.BreakdownEntry{
			Label:   k,
			Count:   counts[k],
			Percent: percent(counts[k], len(files)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func decade(year int) string {
	return strconv.Itoa(year/10*10) + "s"
}

func runtimeBucket(minutes int) string {
	switch {
	case minutes < 30:
		return "<30 min"
	case minutes < 60:
		return "30-60 min"
	case minutes < 90:
		return "60-90 min"
	case minutes < 120:
		return "90-120 min"
	default:
		return ">120 min"
	}
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(count) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ──────────────────── Libraries ────────────────────

// ErrLibraryNotFound means the requested library is absent from the active
// source's listing.
var ErrLibraryNotFound = errors.New("library not found")

// FindLibrary resolves a library ID against the active source's listing.
func (g *Generator) FindLibrary(ctx context.Context, id string) (models.Library, error) {
	src, err := g.selector.Pick()
	if err != nil {
		return models.Library{}, err
	}
	libs, err := src.Libraries(ctx)
	if err != nil {
		return models.Library{}, err
	}
	for _, lib := range libs {
		if lib.ID == id {
			return lib, nil
		}
	}
	return models.Library{}, fmt.Errorf("library %s: %w", id, ErrLibraryNotFound)
}

// Libraries lists the active source's analyzable libraries.
func (g *Generator) Libraries(ctx context.Context) ([]models.Library, error) {
	src, err := g.selector.Pick()
	if err != nil {
		return nil, err
	}
	return src.Libraries(ctx)
}
