// Package scoring computes the 0-100 composite quality score used for
// upgrade recommendations. Pure functions: no I/O, no state.
package scoring

import (
	"fmt"
	"strings"

	"github.com/medialens/medialens/internal/mediainfo"
	"github.com/medialens/medialens/internal/models"
)

// Component maxima. The five components always sum to at most 100.
const (
	MaxResolution = 25.0
	MaxCodec      = 20.0
	MaxBitrate    = 20.0
	MaxSource     = 20.0
	MaxTechnical  = 15.0
)

// Upgrade-reason thresholds: a reason is emitted when the component falls
// below its threshold. Advisory only, never fed back into the score.
const (
	resolutionThreshold = 15.0
	codecThreshold      = 15.0
	bitrateThreshold    = 12.0
	sourceThreshold     = 10.0
	technicalThreshold  = 10.0
)

// Input carries everything the scorer looks at. Only Details is required;
// zero values elsewhere degrade the relevant component gracefully.
type Input struct {
	Details       mediainfo.Details
	FileSize      int64 // bytes, used to estimate bitrate when unmeasured
	RuntimeMin    int   // minutes, 0 when unknown
	VideoBitrate  int64 // kbps, 0 when unknown
	HasMultiAudio bool
	HasSubtitles  bool
}

// Components is the per-component breakdown of a score.
type Components struct {
	Resolution float64 `json:"resolution"`
	Codec      float64 `json:"codec"`
	Bitrate    float64 `json:"bitrate"`
	Source     float64 `json:"source"`
	Technical  float64 `json:"technical"`
}

// Result is a complete scoring outcome.
type Result struct {
	Components     Components         `json:"components"`
	Total          float64            `json:"total"`
	Tier           models.QualityTier `json:"tier"`
	UpgradeReasons []string           `json:"upgrade_reasons,omitempty"`
}

// Score computes the composite quality score for one file.
func Score(in Input) Result {
	c := Components{
		Resolution: resolutionScore(in.Details.Resolution),
		Codec:      codecScore(in.Details, in.Details.EncodingTool),
		Bitrate:    bitrateScore(in.Details.Resolution, in.Details.Codec, effectiveBitrate(in)),
		Source:     sourceScore(in.Details.SourceType),
		Technical:  technicalScore(in),
	}
	total := c.Resolution + c.Codec + c.Bitrate + c.Source + c.Technical

	return Result{
		Components:     c,
		Total:          total,
		Tier:           TierFor(total),
		UpgradeReasons: upgradeReasons(c, in),
	}
}

// TierFor maps a total score onto its quality tier. Monotonic step
// function: 85 Excellent, 70 Good, 50 Fair, else Poor.
func TierFor(total float64) models.QualityTier {
	switch {
	case total >= 85:
		return models.TierExcellent
	case total >= 70:
		return models.TierGood
	case total >= 50:
		return models.TierFair
	default:
		return models.TierPoor
	}
}

// ──────────────────── Components ────────────────────

// resolutionScore is a step function on pixel count.
func resolutionScore(resolution string) float64 {
	switch resolution {
	case "2160p":
		return 25
	case "1080p":
		return 20
	case "720p":
		return 15
	case "576p":
		return 10
	case "480p":
		return 5
	default:
		return 0
	}
}

// codecScore gives a base score per codec family plus a small efficiency
// tuning bonus for careful encodes (slow presets, low CRF), capped at 20.
func codecScore(d mediainfo.Details, tool string) float64 {
	var base float64
	switch d.Codec {
	case "AV1":
		base = 20
	case "H.265":
		base = 18
		if d.Profile == "Main 10" {
			base = 19
		}
	case "VP9":
		base = 16
	case "H.264":
		base = 14
	case "MPEG-4":
		base = 8
	case "MPEG-2":
		base = 4
	default:
		base = 10
	}

	base += tuningBonus(tool)
	if base > MaxCodec {
		base = MaxCodec
	}
	return base
}

// tuningBonus detects encoder effort from preset/CRF tokens: up to +2.
func tuningBonus(tool string) float64 {
	lower := strings.ToLower(tool)
	var bonus float64
	switch {
	case strings.Contains(lower, "veryslow"), strings.Contains(lower, "slower"):
		bonus = 2
	case strings.Contains(lower, "slow"):
		bonus = 1
	}
	// CRF below 20 signals a quality-targeted encode.
	for crf := 10; crf < 20; crf++ {
		if strings.Contains(lower, fmt.Sprintf("crf%d", crf)) {
			if bonus < 2 {
				bonus++
			}
			break
		}
	}
	return bonus
}

// effectiveBitrate returns the measured video bitrate, falling back to an
// estimate from file size over runtime when the source omits it. The
// estimate includes container and audio overhead, so it skews slightly
// high. Returns 0 when neither signal is present.
func effectiveBitrate(in Input) int64 {
	if in.VideoBitrate > 0 {
		return in.VideoBitrate
	}
	if in.FileSize > 0 && in.RuntimeMin > 0 {
		return in.FileSize * 8 / 1000 / int64(in.RuntimeMin*60)
	}
	return 0
}

// optimalBitrates is the per-resolution reference bitrate in kbps for an
// H.264 encode; codec factors scale it for more efficient codecs.
var optimalBitrates = map[string]float64{
	"2160p": 35000,
	"1080p": 10000,
	"720p":  5000,
	"576p":  3000,
	"480p":  2000,
}

var codecEfficiency = map[string]float64{
	"AV1":    0.6,
	"H.265":  0.8,
	"VP9":    0.8,
	"H.264":  1.0,
	"MPEG-4": 1.3,
	"MPEG-2": 1.6,
}

// bitrateScore compares the actual bitrate against codec-adjusted bands for
// the resolution tier. The optimal band (within 20% of optimal) scores 20;
// starving encodes fall off proportionally toward 0; over-provisioned
// encodes get a flat 17 because high bitrate is never hard-penalized.
func bitrateScore(resolution, codec string, bitrate int64) float64 {
	if bitrate <= 0 {
		// Unknown bitrate: neutral midpoint so absent data neither
		// sells a file as optimal nor flags it for upgrade.
		return 10
	}

	opt, ok := optimalBitrates[resolution]
	if !ok {
		opt = optimalBitrates["1080p"]
	}
	if f, ok := codecEfficiency[codec]; ok {
		opt *= f
	}

	var (
		min = 0.4 * opt
		lo  = 0.8 * opt
		hi  = 1.2 * opt
		max = 2.0 * opt
		br  = float64(bitrate)
	)

	switch {
	case br >= lo && br <= hi:
		return 20
	case br < min:
		return 10 * br / min
	case br < lo:
		return 10 + 10*(br-min)/(lo-min)
	case br <= max:
		return 20 - 3*(br-hi)/(max-hi)
	default:
		return 17
	}
}

// sourceScore ranks release provenance. Premium streaming WEB-DLs sit
// between Blu-ray and generic WEB-DL; unknown-but-present sources get a
// below-generic 6 rather than 0.
func sourceScore(source string) float64 {
	switch {
	case source == "Blu-ray Remux":
		return 20
	case source == "Blu-ray":
		return 17
	case strings.HasPrefix(source, "WEB-DL ("):
		switch {
		case strings.Contains(source, "Amazon"), strings.Contains(source, "Netflix"):
			return 15
		case strings.Contains(source, "Apple"), strings.Contains(source, "Disney"):
			return 14
		default:
			return 13
		}
	case source == "WEB-DL":
		return 12
	case source == "WEBRip":
		return 10
	case source == "HDTV":
		return 8
	case source == "DVD":
		return 5
	case source == "CAM":
		return 2
	case source == "":
		return 0
	default:
		return 6
	}
}

// technicalScore sums HDR, bit-depth, color-space, audio and delivery
// bonuses. The raw sum can exceed the cap; it is clamped to 15.
func technicalScore(in Input) float64 {
	d := in.Details
	var raw float64

	switch d.HDRFormat {
	case "Dolby Vision":
		raw += 6
	case "HDR10+":
		raw += 5
	case "HDR10":
		raw += 4
	case "HLG":
		raw += 3
	}

	// 10-bit bonus, skipped when the codec profile already encodes it to
	// avoid double-counting with the Main 10 codec score.
	if d.BitDepth >= 10 && d.Profile != "Main 10" {
		raw += 2
	}

	switch d.ColorSpace {
	case "BT.2020":
		raw += 2
	case "BT.709":
		raw += 1
	}

	raw += audioBonus(d.AudioCodec)

	if in.HasMultiAudio {
		raw += 0.5
	}
	if in.HasSubtitles {
		raw += 0.5
	}
	if d.ScanType == "progressive" {
		raw++
	}
	if standardFrameRate(d.FrameRate) {
		raw++
	}

	if raw > MaxTechnical {
		raw = MaxTechnical
	}
	return raw
}

func audioBonus(codec string) float64 {
	switch codec {
	case "Atmos", "DTS:X":
		return 2
	case "TrueHD", "DTS-HD MA", "DTS-HD":
		return 1.5
	case "DTS", "EAC3", "FLAC":
		return 1
	case "AC3", "AAC", "Opus":
		return 0.5
	default:
		return 0
	}
}

func standardFrameRate(fr string) bool {
	switch fr {
	case "23.976", "24", "25", "29.97", "30":
		return true
	default:
		return false
	}
}

// ──────────────────── Upgrade Reasons ────────────────────

// upgradeReasons emits one advisory string per component below threshold,
// plus specific HDR and bit-depth callouts.
func upgradeReasons(c Components, in Input) []string {
	var reasons []string
	d := in.Details

	if c.Resolution < resolutionThreshold {
		reasons = append(reasons, fmt.Sprintf("low resolution (%s)", d.Resolution))
	}
	if c.Codec < codecThreshold {
		reasons = append(reasons, fmt.Sprintf("outdated codec (%s)", d.Codec))
	}
	if c.Bitrate < bitrateThreshold {
		reasons = append(reasons, "bitrate below optimal for resolution")
	}
	if c.Source < sourceThreshold {
		if d.SourceType == "" {
			reasons = append(reasons, "unknown source quality")
		} else {
			reasons = append(reasons, fmt.Sprintf("low-quality source (%s)", d.SourceType))
		}
	}
	if c.Technical < technicalThreshold {
		reasons = append(reasons, "weak technical profile")
	}

	if d.HDRFormat == "" && d.Resolution == "2160p" {
		reasons = append(reasons, "4K content without HDR")
	}
	if d.BitDepth < 10 && (d.Codec == "H.265" || d.Codec == "AV1") {
		reasons = append(reasons, "8-bit encode on a 10-bit-capable codec")
	}

	return reasons
}
