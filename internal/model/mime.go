package model

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// DetectMIMEType sniffs the payload, falls back to the file extension and finally to image/jpeg.
func DetectMIMEType(data []byte, filename string) string {
	if len(data) > 0 {
		mt := http.DetectContentType(data)
		if mt != "application/octet-stream" {
			return mt
		}
	}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return mt
		}
	}

	return "image/jpeg"
}
