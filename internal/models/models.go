package models

// MediaType classifies a normalized media file.
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeEpisode MediaType = "episode"
	MediaTypeShow    MediaType = "show"
)

// LibraryType classifies an upstream library section.
type LibraryType string

const (
	LibraryTypeMovies  LibraryType = "movie"
	LibraryTypeTVShows LibraryType = "show"
)

// UnknownLabel is the sentinel used wherever upstream metadata is absent.
const UnknownLabel = "Unknown"

// Library is an upstream library section as reported by the listing call.
type Library struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Type      LibraryType `json:"type"`
	ItemCount int         `json:"item_count"`
	TotalSize int64       `json:"total_size"`
}

// MediaFile is the normalized unit of analysis. Both upstream shapes (the
// media server's nested tree and the statistics server's flat table) are
// adapted into this model before any aggregation runs.
type MediaFile struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	FilePath   string    `json:"file_path"` // UnknownLabel when absent
	FileSize   int64     `json:"file_size"` // bytes, >= 0
	Resolution string    `json:"resolution"`
	Codec      string    `json:"codec"`             // upper-cased label or UnknownLabel
	Bitrate    int64     `json:"bitrate,omitempty"` // kbps, 0 when unreported
	Year       int       `json:"year,omitempty"`
	Genres     []string  `json:"genres,omitempty"`
	RuntimeMin int       `json:"runtime_min,omitempty"`
	Type       MediaType `json:"type"`

	// Set only on aggregated show records.
	ShowName     string `json:"show_name,omitempty"`
	EpisodeCount int    `json:"episode_count,omitempty"`
}

// QualityTier is one of four ordered quality buckets.
type QualityTier string

const (
	TierExcellent QualityTier = "Excellent"
	TierGood      QualityTier = "Good"
	TierFair      QualityTier = "Fair"
	TierPoor      QualityTier = "Poor"
)

// EnhancedMediaFile is a MediaFile plus inferred technical details and the
// computed quality score. Computed on demand, cached by file identity, and
// never mutated afterwards: a cache hit is a full replacement.
type EnhancedMediaFile struct {
	MediaFile

	VideoProfile      string `json:"video_profile,omitempty"`
	BitDepth          int    `json:"bit_depth,omitempty"`
	ColorSpace        string `json:"color_space,omitempty"`
	FrameRate         string `json:"frame_rate,omitempty"`
	HDRFormat         string `json:"hdr_format,omitempty"`
	VideoBitrate      int64  `json:"video_bitrate,omitempty"` // kbps
	SourceType        string `json:"source_type,omitempty"`
	ReleaseGroup      string `json:"release_group,omitempty"`
	EncodingTool      string `json:"encoding_tool,omitempty"`
	ResolutionGuessed bool   `json:"resolution_guessed,omitempty"`

	QualityScore     float64     `json:"quality_score"` // 0-100
	QualityTier      QualityTier `json:"quality_tier"`
	UpgradeCandidate bool        `json:"upgrade_candidate"`
	UpgradeReasons   []string    `json:"upgrade_reasons,omitempty"`
}

// ── Library analysis ──

// SizeBucket is one fixed range of the size histogram.
type SizeBucket struct {
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	TotalSize int64   `json:"total_size"`
	Percent   float64 `json:"percent"`
}

// SizeAnalysis covers the size-based portion of a library analysis.
// LargestFiles holds aggregated records (shows for TV libraries);
// EpisodeBreakdown holds the raw episode rows under the same
// sorted-by-size-descending pagination contract.
type SizeAnalysis struct {
	LargestFiles     []MediaFile  `json:"largest_files"`
	EpisodeBreakdown []MediaFile  `json:"episode_breakdown,omitempty"`
	Distribution     []SizeBucket `json:"distribution"`
	TotalSize        int64        `json:"total_size"`
	AverageSize      int64        `json:"average_size"`
	FileCount        int          `json:"file_count"`
	Pagination       Pagination   `json:"pagination"`
}

// BreakdownEntry is one histogram row of a quality or content analysis.
// Percent is computed against the full analyzed library, not the page.
type BreakdownEntry struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type QualityAnalysis struct {
	Resolutions []BreakdownEntry `json:"resolutions"`
	Codecs      []BreakdownEntry `json:"codecs"`
}

type ContentAnalysis struct {
	Genres   []BreakdownEntry `json:"genres"`
	Years    []BreakdownEntry `json:"years"`
	Runtimes []BreakdownEntry `json:"runtimes"`
}

// LibraryAnalysis is the aggregate result for one library. Derived from a
// snapshot of MediaFile records; recomputed and re-cached, never mutated.
type LibraryAnalysis struct {
	LibraryID   string          `json:"library_id"`
	LibraryType LibraryType     `json:"library_type"`
	Source      string          `json:"source"`
	Size        SizeAnalysis    `json:"size_analysis"`
	Quality     QualityAnalysis `json:"quality_analysis"`
	Content     ContentAnalysis `json:"content_analysis"`
}

// ── Enhanced analysis ──

// CodecBreakdown is the per-codec slice of an enhanced analysis.
type CodecBreakdown struct {
	Codec        string  `json:"codec"`
	Count        int     `json:"count"`
	TotalSize    int64   `json:"total_size"`
	AverageScore float64 `json:"average_score"`
	Percent      float64 `json:"percent"`
}

// UpgradeRecommendation pairs a low-scoring file with a concrete suggestion.
type UpgradeRecommendation struct {
	File            EnhancedMediaFile `json:"file"`
	Suggestion      string            `json:"suggestion"`
	EstimatedSaving int64             `json:"estimated_saving,omitempty"` // bytes
}

// EnhancedAnalysis is the enriched, scored view of one library.
type EnhancedAnalysis struct {
	LibraryID    string                  `json:"library_id"`
	Files        []EnhancedMediaFile     `json:"files"`
	TierCounts   map[QualityTier]int     `json:"tier_counts"`
	Codecs       []CodecBreakdown        `json:"codecs"`
	HDRFormats   []BreakdownEntry        `json:"hdr_formats"`
	BitDepths    []BreakdownEntry        `json:"bit_depths"`
	ColorSpaces  []BreakdownEntry        `json:"color_spaces"`
	AverageScore float64                 `json:"average_score"`
	Upgrades     []UpgradeRecommendation `json:"upgrades"`
}

// ── Content aggregation ──

// QueueItem is one acquisition-queue entry, tagged with the service it came
// from once merged. Transient and never persisted.
type QueueItem struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Status        string  `json:"status"`
	Size          int64   `json:"size"`
	SizeRemaining int64   `json:"size_remaining"`
	Progress      float64 `json:"progress"`
	SourceService string  `json:"source_service"` // "radarr" or "sonarr"
}

// WantedItem is a wanted or missing entry from an acquisition service.
type WantedItem struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Year          int    `json:"year,omitempty"`
	SourceService string `json:"source_service"`
}

// ContentSummary merges wanted/missing/queue data from both acquisition
// services. A failed service contributes zero/empty to its portion and is
// reported as unavailable, so consumers can tell a degraded summary from a
// complete one.
type ContentSummary struct {
	WantedMovies    []WantedItem `json:"wanted_movies"`
	MissingEpisodes []WantedItem `json:"missing_episodes"`
	Queue           []QueueItem  `json:"queue"`
	QueueCounts     QueueCounts  `json:"queue_counts"`
	RadarrAvailable bool         `json:"radarr_available"`
	SonarrAvailable bool         `json:"sonarr_available"`
}

// QueueCounts are simple sums across both sources post-merge.
type QueueCounts struct {
	Downloading int `json:"downloading"`
	Completed   int `json:"completed"`
	Failed      int `json:"failed"`
	Paused      int `json:"paused"`
}

// ── Pagination ──

// LimitAll bypasses slicing entirely instead of truncating.
const LimitAll = -1

// Pagination is the metadata consumed by the request-handling layer.
type Pagination struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// NewPagination computes pagination metadata for a slice request.
// hasMore = offset + limit < total; the all-items sentinel never has more.
func NewPagination(offset, limit, total int) Pagination {
	p := Pagination{Offset: offset, Limit: limit, Total: total}
	if limit != LimitAll {
		p.HasMore = offset+limit < total
	}
	return p
}
