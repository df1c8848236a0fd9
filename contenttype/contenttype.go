package contenttype

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Fallback is returned for names without an extension or with an unknown one.
const Fallback = "application/octet-stream"

// SniffLen is the number of leading bytes Detect looks at.
const SniffLen = 512

var byExtension = map[string]string{
	// images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".avif": "image/avif",
	".heic": "image/heic",
	// documents
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".md":   "text/markdown",
	".rtf":  "application/rtf",
	// web
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".mjs":  "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".wasm": "application/wasm",
	// archives
	".zip": "application/zip",
	".gz":  "application/gzip",
	".tar": "application/x-tar",
	".7z":  "application/x-7z-compressed",
	".rar": "application/vnd.rar",
	".zst": "application/zstd",
	// audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	// video
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	// fonts
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
}

// Resolve maps a file name to a MIME type based on its extension.
// It never fails: unknown or missing extensions resolve to Fallback.
func Resolve(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return Fallback
	}
	if t, ok := byExtension[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return Fallback
}

// Detect resolves by extension first and sniffs the leading bytes of the content
// only when the extension gives no answer.
func Detect(fileName string, head []byte) string {
	if t := Resolve(fileName); t != Fallback {
		return t
	}
	if len(head) == 0 {
		return Fallback
	}
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}
	if mt := mimetype.Detect(head); mt != nil {
		return mt.String()
	}
	return Fallback
}
