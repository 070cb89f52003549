package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// GenerateSafeFilename strips characters object stores and URLs dislike and
// appends a timestamp so re-uploads do not collide.
func GenerateSafeFilename(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	nameWithoutExt := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	safeName := unsafeFilenameChars.ReplaceAllString(nameWithoutExt, "_")
	if safeName == "" {
		safeName = "file"
	}
	return fmt.Sprintf("%s_%s%s", safeName, now.Format("20060102_150405"), ext)
}

func ValidateFile(fileHeader *multipart.FileHeader, allowedExts []string, maxMB int64) error {
	if fileHeader.Size > maxMB*1024*1024 {
		return fmt.Errorf("file too large: %s", fileHeader.Filename)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !slices.Contains(allowedExts, ext) {
		return fmt.Errorf("file type not allowed: %s", ext)
	}
	return nil
}
