// Package mediainfo infers technical video/audio characteristics from file
// paths and release names. It is the fallback used when authoritative
// metadata is unavailable: pure pattern matching, deterministic, no I/O.
// Inferred defaults are flagged so callers can tell a guess from a
// measurement.
package mediainfo

import (
	"regexp"
	"strings"
)

// Details holds everything inferable from a file path or display title.
type Details struct {
	Codec        string // e.g. "H.265", never empty (defaults to H.264)
	CodecGuessed bool   // true when Codec is the fallback default
	Profile      string // e.g. "Main 10"
	BitDepth     int    // 8 or 10
	HDRFormat    string // "Dolby Vision", "HDR10+", "HDR10", "HLG" or ""
	ColorSpace   string // "BT.2020" or "BT.709"
	FrameRate    string // e.g. "23.976", "" when not stated
	ScanType     string // "progressive" or "interlaced"

	Resolution        string // e.g. "1080p", never empty (defaults to 1080p)
	ResolutionGuessed bool   // true when Resolution is the fallback default

	SourceType   string // e.g. "Blu-ray Remux", "WEB-DL (Netflix)", "" when unknown
	ReleaseGroup string
	EncodingTool string // e.g. "x265 slow crf18"

	AudioCodec    string // e.g. "Atmos", "DTS-HD MA"
	AudioChannels string // e.g. "7.1"
}

// ──────────────────── Ordered Pattern Rules ────────────────────
// First match wins per field. All matching is case-insensitive against the
// full path, so folder names contribute too.

var codecRules = []struct {
	rx    *regexp.Regexp
	codec string
}{
	{regexp.MustCompile(`(?i)\bav1\b`), "AV1"},
	{regexp.MustCompile(`(?i)x265|h\.?265|hevc`), "H.265"},
	{regexp.MustCompile(`(?i)\bvp9\b`), "VP9"},
	{regexp.MustCompile(`(?i)x264|h\.?264|\bavc\b`), "H.264"},
	{regexp.MustCompile(`(?i)xvid|divx|mpeg-?4`), "MPEG-4"},
	{regexp.MustCompile(`(?i)mpeg-?2`), "MPEG-2"},
}

// HDR detection order matters: Dolby Vision outranks HDR10+ outranks HDR10.
var hdrRules = []struct {
	rx     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`(?i)dolby.?vision|\bdovi\b|[\s._-]dv[\s._-]`), "Dolby Vision"},
	{regexp.MustCompile(`(?i)hdr10\+|hdr10plus`), "HDR10+"},
	{regexp.MustCompile(`(?i)\bhdr(10)?\b`), "HDR10"},
	{regexp.MustCompile(`(?i)\bhlg\b`), "HLG"},
}

var tenBitRx = regexp.MustCompile(`(?i)10.?bit|hi10p?|main.?10`)
var bt2020Rx = regexp.MustCompile(`(?i)bt\.?2020|rec\.?2020`)
var bt709Rx = regexp.MustCompile(`(?i)bt\.?709|rec\.?709`)
var interlacedRx = regexp.MustCompile(`(?i)\b(480i|576i|1080i)\b`)

var frameRateRx = regexp.MustCompile(`(?i)\b(23\.976|24000|25\.000|29\.97|59\.94|24|25|30|50|60)\s?fps\b`)

var resolutionRules = []struct {
	rx    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)\b(2160p|4k|uhd|ultrahd)\b`), "2160p"},
	{regexp.MustCompile(`(?i)\b1080[pi]\b`), "1080p"},
	{regexp.MustCompile(`(?i)\b720[pi]\b`), "720p"},
	{regexp.MustCompile(`(?i)\b576[pi]\b`), "576p"},
	{regexp.MustCompile(`(?i)\b480[pi]\b`), "480p"},
}

// defaultResolution is a deliberate heuristic, not a measurement; callers
// see ResolutionGuessed when it is used.
const defaultResolution = "1080p"
const defaultCodec = "H.264"

// Source detection order: the most specific labels first, with remux taking
// precedence over plain Blu-ray and premium streaming networks detected
// inside WEB-DL names.
var remuxRx = regexp.MustCompile(`(?i)\bremux\b`)
var blurayRx = regexp.MustCompile(`(?i)blu-?ray|bdrip|brrip|bdremux|\bbd25\b|\bbd50\b`)
var webdlRx = regexp.MustCompile(`(?i)web-?dl|\bweb\b`)
var webripRx = regexp.MustCompile(`(?i)web-?rip`)
var hdtvRx = regexp.MustCompile(`(?i)\b(hdtv|pdtv|dsr)\b`)
var dvdRx = regexp.MustCompile(`(?i)\bdvd(rip)?\b`)
var camRx = regexp.MustCompile(`(?i)\bcam(rip)?\b|\bts\b|telesync|telecine|\btc\b|screener|\bscr\b|dvdscr`)

// streamingNetworks maps release tokens to the premium network label used
// by the scorer to distinguish premium WEB-DLs from generic ones.
var streamingNetworks = []struct {
	rx      *regexp.Regexp
	network string
}{
	{regexp.MustCompile(`(?i)\bamzn\b|amazon`), "Amazon"},
	{regexp.MustCompile(`(?i)\bnf\b|netflix`), "Netflix"},
	{regexp.MustCompile(`(?i)\batvp\b|\baptv\b`), "Apple TV+"},
	{regexp.MustCompile(`(?i)\bdsnp\b|disney`), "Disney+"},
	{regexp.MustCompile(`(?i)\bhmax\b|\bmax\b`), "Max"},
	{regexp.MustCompile(`(?i)\bhulu\b`), "Hulu"},
}

// Terminal-anchored release group patterns: "-GROUP" at the very end of the
// base name, or a trailing "[GROUP]" bracket. The 2-10 character filter
// drops false positives like a trailing "-1" or a bracketed codec string.
var dashGroupRx = regexp.MustCompile(`-([A-Za-z0-9]+)$`)
var bracketGroupRx = regexp.MustCompile(`\[([A-Za-z0-9._-]+)\]$`)

const (
	groupMinLen = 2
	groupMaxLen = 10
)

// Encoder tuning hints: preset names and CRF values written into release
// names or tool tags by careful encoders.
var encoderPresetRx = regexp.MustCompile(`(?i)\b(veryslow|slower|slow|medium|fast|veryfast)\b`)
var crfRx = regexp.MustCompile(`(?i)\bcrf\s?(\d{1,2})\b`)

var audioRules = []struct {
	rx    *regexp.Regexp
	codec string
}{
	{regexp.MustCompile(`(?i)\batmos\b`), "Atmos"},
	{regexp.MustCompile(`(?i)dts[\s._-]?x\b`), "DTS:X"},
	{regexp.MustCompile(`(?i)dts-?hd[\s._-]?ma`), "DTS-HD MA"},
	{regexp.MustCompile(`(?i)dts-?hd`), "DTS-HD"},
	{regexp.MustCompile(`(?i)true-?hd`), "TrueHD"},
	{regexp.MustCompile(`(?i)\bdts\b`), "DTS"},
	{regexp.MustCompile(`(?i)\beac-?3\b|dd\+|ddp`), "EAC3"},
	{regexp.MustCompile(`(?i)\bac-?3\b|\bdd5?\b`), "AC3"},
	{regexp.MustCompile(`(?i)\bflac\b`), "FLAC"},
	{regexp.MustCompile(`(?i)\baac\b`), "AAC"},
	{regexp.MustCompile(`(?i)\bopus\b`), "Opus"},
	{regexp.MustCompile(`(?i)\bmp3\b`), "MP3"},
}

var channelsRx = regexp.MustCompile(`\b([257])\.[01]\b`)

// ──────────────────── Inferencer ────────────────────

// Infer extracts technical details from a file path or display title.
// codecHint and resolutionHint, when non-empty, are authoritative values
// from upstream metadata and take precedence over filename patterns.
func Infer(path, codecHint, resolutionHint string) Details {
	d := Details{}
	base := stripExtension(path)

	// Codec: hint first, then ordered rules, then the H.264 default.
	if codecHint != "" && !strings.EqualFold(codecHint, "unknown") {
		d.Codec = normalizeCodec(codecHint)
	} else {
		for _, r := range codecRules {
			if r.rx.MatchString(base) {
				d.Codec = r.codec
				break
			}
		}
		if d.Codec == "" {
			d.Codec = defaultCodec
			d.CodecGuessed = true
		}
	}

	// Bit depth and profile.
	d.BitDepth = 8
	if tenBitRx.MatchString(base) {
		d.BitDepth = 10
		if d.Codec == "H.265" {
			d.Profile = "Main 10"
		}
	} else if d.Codec == "AV1" || d.Codec == "VP9" {
		// Streaming-first codecs almost always ship 10-bit profiles.
		d.BitDepth = 10
	}

	// HDR: Dolby Vision > HDR10+ > HDR10 > HLG > none.
	for _, r := range hdrRules {
		if r.rx.MatchString(base) {
			d.HDRFormat = r.format
			break
		}
	}
	if d.HDRFormat != "" && d.BitDepth < 10 {
		// HDR implies a 10-bit transfer even when the name omits it.
		d.BitDepth = 10
	}

	// Color space: explicit marker, else implied by HDR.
	switch {
	case bt2020Rx.MatchString(base):
		d.ColorSpace = "BT.2020"
	case bt709Rx.MatchString(base):
		d.ColorSpace = "BT.709"
	case d.HDRFormat != "":
		d.ColorSpace = "BT.2020"
	default:
		d.ColorSpace = "BT.709"
	}

	// Scan type from interlaced resolution markers.
	if interlacedRx.MatchString(base) {
		d.ScanType = "interlaced"
	} else {
		d.ScanType = "progressive"
	}

	if m := frameRateRx.FindStringSubmatch(base); len(m) >= 2 {
		d.FrameRate = m[1]
	}

	// Resolution: hint first, then explicit markers, then the 1080p
	// default flagged as guessed.
	if resolutionHint != "" && !strings.EqualFold(resolutionHint, "unknown") {
		d.Resolution = normalizeResolution(resolutionHint)
	} else {
		for _, r := range resolutionRules {
			if r.rx.MatchString(base) {
				d.Resolution = r.label
				break
			}
		}
		if d.Resolution == "" {
			d.Resolution = defaultResolution
			d.ResolutionGuessed = true
		}
	}

	d.SourceType = inferSource(base)
	d.ReleaseGroup = inferReleaseGroup(base)
	d.EncodingTool = inferEncodingTool(base)

	for _, r := range audioRules {
		if r.rx.MatchString(base) {
			d.AudioCodec = r.codec
			break
		}
	}
	if m := channelsRx.FindStringSubmatch(base); len(m) >= 1 {
		d.AudioChannels = m[0]
	}

	return d
}

// inferSource classifies the release source. Remux is checked before plain
// Blu-ray, and premium streaming networks are resolved inside WEB-DL names.
func inferSource(base string) string {
	switch {
	case remuxRx.MatchString(base):
		return "Blu-ray Remux"
	case blurayRx.MatchString(base):
		return "Blu-ray"
	case webripRx.MatchString(base):
		return "WEBRip"
	case webdlRx.MatchString(base):
		for _, n := range streamingNetworks {
			if n.rx.MatchString(base) {
				return "WEB-DL (" + n.network + ")"
			}
		}
		return "WEB-DL"
	case hdtvRx.MatchString(base):
		return "HDTV"
	case dvdRx.MatchString(base):
		return "DVD"
	case camRx.MatchString(base):
		return "CAM"
	}
	return ""
}

// inferReleaseGroup extracts a terminal-anchored group name. Groups live at
// the very end of the base name; the length filter rejects stray suffixes.
func inferReleaseGroup(base string) string {
	name := lastPathSegment(base)

	if m := bracketGroupRx.FindStringSubmatch(name); len(m) >= 2 {
		if g := m[1]; plausibleGroup(g) {
			return g
		}
	}
	// Strip a trailing bracket block so "-GROUP [remux]" still matches.
	stripped := strings.TrimSpace(bracketGroupRx.ReplaceAllString(name, ""))
	if m := dashGroupRx.FindStringSubmatch(stripped); len(m) >= 2 {
		if g := m[1]; plausibleGroup(g) {
			return g
		}
	}
	return ""
}

func plausibleGroup(g string) bool {
	if len(g) < groupMinLen || len(g) > groupMaxLen {
		return false
	}
	// All-digit suffixes are part numbers or years, not groups.
	for _, c := range g {
		if c < '0' || c > '9' {
			return true
		}
	}
	return false
}

// inferEncodingTool reassembles encoder and tuning tokens into one label,
// e.g. "x265 slow crf18".
func inferEncodingTool(base string) string {
	var parts []string
	lower := strings.ToLower(base)
	switch {
	case strings.Contains(lower, "x265"):
		parts = append(parts, "x265")
	case strings.Contains(lower, "x264"):
		parts = append(parts, "x264")
	}
	if m := encoderPresetRx.FindStringSubmatch(base); len(m) >= 2 {
		parts = append(parts, strings.ToLower(m[1]))
	}
	if m := crfRx.FindStringSubmatch(base); len(m) >= 2 {
		parts = append(parts, "crf"+m[1])
	}
	return strings.Join(parts, " ")
}

// ──────────────────── Utility Functions ────────────────────

func stripExtension(path string) string {
	if idx := strings.LastIndex(path, "."); idx > 0 {
		ext := path[idx+1:]
		if len(ext) >= 2 && len(ext) <= 4 && !strings.ContainsAny(ext, "/\\ ") {
			return path[:idx]
		}
	}
	return path
}

func lastPathSegment(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// normalizeCodec maps upstream codec labels onto the inferencer's
// vocabulary so hinted and inferred values compare equal.
func normalizeCodec(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hevc", "h265", "h.265", "x265":
		return "H.265"
	case "avc", "h264", "h.264", "x264":
		return "H.264"
	case "av1":
		return "AV1"
	case "vp9":
		return "VP9"
	case "mpeg4", "mpeg-4", "xvid", "divx":
		return "MPEG-4"
	case "mpeg2", "mpeg-2", "mpeg2video":
		return "MPEG-2"
	default:
		return strings.ToUpper(strings.TrimSpace(raw))
	}
}

// normalizeResolution maps upstream labels ("4k", "1080", "sd") onto the
// standard p-suffixed labels.
func normalizeResolution(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "4k", "2160", "2160p", "uhd":
		return "2160p"
	case "1080", "1080p", "1080i":
		return "1080p"
	case "720", "720p":
		return "720p"
	case "576", "576p":
		return "576p"
	case "480", "480p", "sd":
		return "480p"
	default:
		return strings.TrimSpace(raw)
	}
}
