package scan

import (
	"bytes"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/util"
)

// SignatureWindow is how many leading bytes of an object the byte
// scanner fetches and inspects. Every known signature fits inside it.
const SignatureWindow = 12

// Signature is one magic-byte pattern for a media format. Anchored
// signatures must appear at exactly Offset. Floating signatures
// (Anywhere == true) may appear at any position within the signature
// window; container formats like RIFF and ISO-BMFF put their brand
// a few bytes in, and the accepted behavior is to match the brand
// anywhere in the first dozen bytes rather than at a fixed offset.
// Tightening this would change which files get quarantined.
type Signature struct {
	Bytes    []byte
	Offset   int
	Anywhere bool
}

func anchored(offset int, sig string) Signature {
	return Signature{Bytes: []byte(sig), Offset: offset}
}

func floating(sig string) Signature {
	return Signature{Bytes: []byte(sig), Anywhere: true}
}

// MediaFormat is one entry in the closed set of media types this
// system accepts. Any extension outside the set is default-deny:
// the byte scanner quarantines it without reading a single byte.
type MediaFormat struct {
	Extension  string
	MediaType  string
	Signatures []Signature
}

var mediaFormats = map[string]MediaFormat{
	"jpg":  {"jpg", constants.MediaTypeImage, []Signature{anchored(0, "\xff\xd8\xff")}},
	"jpeg": {"jpeg", constants.MediaTypeImage, []Signature{anchored(0, "\xff\xd8\xff")}},
	"png":  {"png", constants.MediaTypeImage, []Signature{anchored(0, "\x89PNG\r\n\x1a\n")}},
	"gif":  {"gif", constants.MediaTypeImage, []Signature{anchored(0, "GIF87a"), anchored(0, "GIF89a")}},
	"webp": {"webp", constants.MediaTypeImage, []Signature{floating("WEBP")}},
	"heic": {"heic", constants.MediaTypeImage, []Signature{floating("ftyp")}},
	"heif": {"heif", constants.MediaTypeImage, []Signature{floating("ftyp")}},
	"avif": {"avif", constants.MediaTypeImage, []Signature{floating("ftyp")}},

	"mp4":  {"mp4", constants.MediaTypeVideo, []Signature{floating("ftyp")}},
	"m4v":  {"m4v", constants.MediaTypeVideo, []Signature{floating("ftyp")}},
	"mov":  {"mov", constants.MediaTypeVideo, []Signature{floating("ftyp")}},
	"webm": {"webm", constants.MediaTypeVideo, []Signature{anchored(0, "\x1a\x45\xdf\xa3")}},
	"avi":  {"avi", constants.MediaTypeVideo, []Signature{floating("AVI ")}},

	"mp3":  {"mp3", constants.MediaTypeAudio, []Signature{anchored(0, "ID3"), anchored(0, "\xff\xfb"), anchored(0, "\xff\xf3"), anchored(0, "\xff\xf2")}},
	"m4a":  {"m4a", constants.MediaTypeAudio, []Signature{floating("ftyp")}},
	"wav":  {"wav", constants.MediaTypeAudio, []Signature{floating("WAVE")}},
	"aac":  {"aac", constants.MediaTypeAudio, []Signature{anchored(0, "\xff\xf1"), anchored(0, "\xff\xf9")}},
	"flac": {"flac", constants.MediaTypeAudio, []Signature{anchored(0, "fLaC")}},
	"ogg":  {"ogg", constants.MediaTypeAudio, []Signature{anchored(0, "OggS")}},
}

// FormatForKey returns the media format for an object key's
// extension. The second return is false for anything outside the
// allow-list, including keys with no extension at all.
func FormatForKey(key string) (MediaFormat, bool) {
	format, ok := mediaFormats[util.KeyExt(key)]
	return format, ok
}

// RequiresModeration returns true for media types the content
// classifier knows how to inspect. Audio is byte-scan only.
func (f MediaFormat) RequiresModeration() bool {
	return f.MediaType == constants.MediaTypeImage || f.MediaType == constants.MediaTypeVideo
}

// MatchesHeader returns true if any of this format's signatures is
// present in the given header prefix. Callers pass the first
// SignatureWindow bytes of the object; shorter prefixes are fine and
// simply match fewer signatures.
func (f MediaFormat) MatchesHeader(prefix []byte) bool {
	if len(prefix) > SignatureWindow {
		prefix = prefix[:SignatureWindow]
	}
	for _, sig := range f.Signatures {
		if sig.Anywhere {
			if bytes.Contains(prefix, sig.Bytes) {
				return true
			}
			continue
		}
		end := sig.Offset + len(sig.Bytes)
		if end <= len(prefix) && bytes.Equal(prefix[sig.Offset:end], sig.Bytes) {
			return true
		}
	}
	return false
}

// ExpectedCountForKey returns how many verdicts must be recorded
// before the coordination record for this object is complete. Images
// and video need both the byte scanner and the moderation scanner.
// Audio needs only the byte scanner. Unknown types also expect one
// verdict: the byte scanner's default-deny quarantine completes the
// record immediately, and the moderation scanner never reports on
// them.
func ExpectedCountForKey(key string) int {
	format, ok := FormatForKey(key)
	if ok && format.RequiresModeration() {
		return 2
	}
	return 1
}
