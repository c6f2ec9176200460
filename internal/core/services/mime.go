package services

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Common MIME types for ingested files.
const (
	MIMETypePlain    = "text/plain"
	MIMETypeMarkdown = "text/markdown"
	MIMETypePDF      = "application/pdf"
)

var extensionTypes = map[string]string{
	".txt":      MIMETypePlain,
	".text":     MIMETypePlain,
	".md":       MIMETypeMarkdown,
	".markdown": MIMETypeMarkdown,
	".pdf":      MIMETypePDF,
}

// DetectMIMEType guesses a file's MIME type from its extension, falling
// back to content sniffing. Parameters such as charset are stripped.
func DetectMIMEType(path string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return baseMIMEType(t)
	}
	if len(content) > 0 {
		return baseMIMEType(http.DetectContentType(content))
	}
	return "application/octet-stream"
}

func baseMIMEType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(strings.ToLower(t))
}
