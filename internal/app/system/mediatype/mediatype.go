// Package mediatype maps file extensions to MIME types and MIME types to
// messaging payload kinds. The extension table covers the media formats the
// messaging gateway accepts.
package mediatype

import (
	"net/url"
	"path"
	"strings"

	"github.com/Anaastro/landing-demo/internal/domain/models"
)

// extToMime maps lowercase file extensions (without dot) to MIME types.
var extToMime = map[string]string{
	// Images
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",

	// Video
	"mp4":  "video/mp4",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"wmv":  "video/x-ms-wmv",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",

	// Audio
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"flac": "audio/flac",

	// Documents
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"zip":  "application/zip",
	"rar":  "application/vnd.rar",
}

// FallbackMime is used when an extension is missing or unrecognized.
const FallbackMime = "application/octet-stream"

// ForExtension returns the MIME type for a file extension (with or without
// leading dot), or FallbackMime when unknown.
func ForExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if mime, ok := extToMime[ext]; ok {
		return mime
	}
	return FallbackMime
}

// ForURL derives the MIME type from the extension of a URL's path,
// ignoring any query string or fragment.
func ForURL(rawURL string) string {
	return ForExtension(path.Ext(urlPath(rawURL)))
}

// FileNameFromURL extracts the last path segment of a URL, decoded.
// Returns "archivo" when the URL has no usable name.
func FileNameFromURL(rawURL string) string {
	name := path.Base(urlPath(rawURL))
	if name == "." || name == "/" || name == "" {
		return "archivo"
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return name
}

func urlPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return u.Path
	}
	// Not a parseable URL; strip query/fragment by hand.
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return rawURL
}

// MessageTypeForMime maps a MIME type to the gateway message kind.
// Anything that is not image, video, or audio ships as a document.
func MessageTypeForMime(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.MessageTypeImage
	case strings.HasPrefix(mime, "video/"):
		return models.MessageTypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return models.MessageTypeAudio
	default:
		return models.MessageTypeDocument
	}
}

// SanitizeFileName makes a name safe for storage paths: spaces become
// underscores and anything outside [a-zA-Z0-9._-] is dropped.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "archivo"
	}
	return b.String()
}
