package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/medialens/medialens/internal/cache"
	"github.com/medialens/medialens/internal/mediainfo"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/scoring"
)

// maxUpgradeRecommendations caps the ranked upgrade list.
const maxUpgradeRecommendations = 20

// hevcSavingRatio is the assumed size reduction from re-encoding H.264
// material to H.265.
const hevcSavingRatio = 0.30

// Enhancer wraps the basic generator's file lists with inferred technical
// details and quality scores. Per-file enrichment is cached far longer than
// analysis snapshots since it is derived from the file path, which is
// stable.
type Enhancer struct {
	generator *Generator
	store     cache.Store
	fileTTL   time.Duration
}

func NewEnhancer(generator *Generator, store cache.Store, fileTTL time.Duration) *Enhancer {
	return &Enhancer{generator: generator, store: store, fileTTL: fileTTL}
}

// Analyze enriches and scores every file of a library, then derives the
// tier histogram, per-codec slices, HDR/bit-depth/color-space breakdowns
// and the ranked upgrade list.
func (e *Enhancer) Analyze(ctx context.Context, lib models.Library) (*models.EnhancedAnalysis, error) {
	files, err := e.generator.Files(ctx, lib)
	if err != nil {
		return nil, err
	}

	enhanced := make([]models.EnhancedMediaFile, 0, len(files))
	for _, f := range files {
		enhanced = append(enhanced, e.enrich(ctx, f))
	}

	a := &models.EnhancedAnalysis{
		LibraryID:   lib.ID,
		Files:       enhanced,
		TierCounts:  map[models.QualityTier]int{},
		HDRFormats:  enhancedBreakdown(enhanced, hdrLabel),
		BitDepths:   enhancedBreakdown(enhanced, bitDepthLabel),
		ColorSpaces: enhancedBreakdown(enhanced, colorSpaceLabel),
	}

	var scoreSum float64
	for _, f := range enhanced {
		a.TierCounts[f.QualityTier]++
		scoreSum += f.QualityScore
	}
	if len(enhanced) > 0 {
		a.AverageScore = round1(scoreSum / float64(len(enhanced)))
	}

	a.Codecs = codecBreakdown(enhanced)
	a.Upgrades = upgradeList(enhanced)
	return a, nil
}

// EnrichFile scores a single file, serving from the per-file cache when
// possible.
func (e *Enhancer) EnrichFile(ctx context.Context, f models.MediaFile) models.EnhancedMediaFile {
	return e.enrich(ctx, f)
}

func (e *Enhancer) enrich(ctx context.Context, f models.MediaFile) models.EnhancedMediaFile {
	key := "enhanced:" + f.ID

	var cached models.EnhancedMediaFile
	if e.store.Get(ctx, key, &cached) {
		return cached
	}

	path := f.FilePath
	if path == models.UnknownLabel {
		path = f.Title
	}
	d := mediainfo.Infer(path, f.Codec, f.Resolution)

	result := scoring.Score(scoring.Input{
		Details:      d,
		FileSize:     f.FileSize,
		RuntimeMin:   f.RuntimeMin,
		VideoBitrate: f.Bitrate,
	})

	out := models.EnhancedMediaFile{
		MediaFile:         f,
		VideoProfile:      d.Profile,
		BitDepth:          d.BitDepth,
		ColorSpace:        d.ColorSpace,
		FrameRate:         d.FrameRate,
		HDRFormat:         d.HDRFormat,
		VideoBitrate:      f.Bitrate,
		SourceType:        d.SourceType,
		ReleaseGroup:      d.ReleaseGroup,
		EncodingTool:      d.EncodingTool,
		ResolutionGuessed: d.ResolutionGuessed,
		QualityScore:      result.Total,
		QualityTier:       result.Tier,
		UpgradeCandidate:  len(result.UpgradeReasons) > 0,
		UpgradeReasons:    result.UpgradeReasons,
	}
	out.Codec = d.Codec
	out.Resolution = d.Resolution

	e.store.Set(ctx, key, out, e.fileTTL)
	return out
}

// ──────────────────── Derived breakdowns ────────────────────

func codecBreakdown(files []models.EnhancedMediaFile) []models.CodecBreakdown {
	type acc struct {
		count int
		size  int64
		score float64
	}
	var (
		order  []string
		totals = map[string]*acc{}
	)
	for _, f := range files {
		a, ok := totals[f.Codec]
		if !ok {
			a = &acc{}
			totals[f.Codec] = a
			order = append(order, f.Codec)
		}
		a.count++
		a.size += f.FileSize
		a.score += f.QualityScore
	}

	out := make([]models.CodecBreakdown, 0, len(order))
	for _, codec := range order {
		a := totals[codec]
		out = append(out, models.CodecBreakdown{
			Codec:        codec,
			Count:        a.count,
			TotalSize:    a.size,
			AverageScore: round1(a.score / float64(a.count)),
			Percent:      percent(a.count, len(files)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func enhancedBreakdown(files []models.EnhancedMediaFile, label func(models.EnhancedMediaFile) string) []models.BreakdownEntry {
	var (
		counts = map[string]int{}
		order  []string
	)
	for _, f := range files {
		k := label(f)
		if k == "" {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
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

func hdrLabel(f models.EnhancedMediaFile) string {
	if f.HDRFormat == "" {
		return "SDR"
	}
	return f.HDRFormat
}

func bitDepthLabel(f models.EnhancedMediaFile) string {
	if f.BitDepth <= 0 {
		return ""
	}
	return fmt.Sprintf("%d-bit", f.BitDepth)
}

func colorSpaceLabel(f models.EnhancedMediaFile) string {
	return f.ColorSpace
}

// ──────────────────── Upgrades ────────────────────

// upgradeList ranks candidates worst-first and pairs each with a concrete
// suggestion.
func upgradeList(files []models.EnhancedMediaFile) []models.UpgradeRecommendation {
	var candidates []models.EnhancedMediaFile
	for _, f := range files {
		if f.UpgradeCandidate {
			candidates = append(candidates, f)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].QualityScore < candidates[j].QualityScore
	})
	if len(candidates) > maxUpgradeRecommendations {
		candidates = candidates[:maxUpgradeRecommendations]
	}

	out := make([]models.UpgradeRecommendation, 0, len(candidates))
	for _, f := range candidates {
		rec := models.UpgradeRecommendation{
			File:       f,
			Suggestion: suggestion(f),
		}
		if f.Codec == "H.264" && f.FileSize > 0 {
			rec.EstimatedSaving = int64(float64(f.FileSize) * hevcSavingRatio)
		}
		out = append(out, rec)
	}
	return out
}

func suggestion(f models.EnhancedMediaFile) string {
	switch {
	case f.Codec == "H.264":
		return "Re-encode to H.265 for comparable quality at roughly 70% of the size"
	case f.Resolution != "4K" && f.Resolution != "2160p" && f.HDRFormat == "":
		return "Replace with a higher-resolution HDR release"
	case f.HDRFormat == "" && (f.Resolution == "4K" || f.Resolution == "2160p"):
		return "Replace with an HDR release"
	case f.BitDepth == 8:
		return "Replace with a 10-bit encode"
	default:
		return "Replace with a higher-quality source"
	}
}
