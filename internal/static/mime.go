package static

import (
	"path/filepath"
)

// DefaultContentType is used for unknown extensions.
const DefaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".css":  "text/css",
	".js":   "application/javascript",
}

// ContentType は拡張子からMIMEタイプを返す（大文字小文字を区別する）
func ContentType(path string) string {
	if ct, ok := contentTypes[filepath.Ext(path)]; ok {
		return ct
	}
	return DefaultContentType
}
