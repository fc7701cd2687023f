package ingest

import (
	"bufio"
	"bytes"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/gemini"
)

const VersionKey = "version"

var versionPattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// IsDottedVersion reports whether v is a dotted numeric version such as "2.1.0".
func IsDottedVersion(v string) bool {
	return versionPattern.MatchString(v)
}

// ValidateMetadata checks one file's metadata set. Every problem is reported,
// not only the first.
func ValidateMetadata(entries []gemini.CustomMetadata, requireVersion bool) error {
	var errs apperror.ValidationErrors
	seen := make(map[string]bool, len(entries))
	hasVersion := false

	for _, e := range entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			errs = append(errs, &apperror.ValidationError{Field: "metadata", Message: "key must not be empty"})
			continue
		}
		if seen[key] {
			errs = append(errs, &apperror.ValidationError{Field: key, Message: "duplicate metadata key"})
			continue
		}
		seen[key] = true

		if key == VersionKey {
			hasVersion = true
			if v := e.Text(); !IsDottedVersion(v) {
				errs = append(errs, &apperror.ValidationError{
					Field:   VersionKey,
					Message: "must be dotted numeric (e.g. 1.0.2), got " + quote(v),
				})
			}
		}
	}

	if requireVersion && !hasVersion {
		errs = append(errs, &apperror.ValidationError{Field: VersionKey, Message: "is required"})
	}
	return errs.OrNil()
}

func quote(s string) string {
	return `"` + s + `"`
}

// DetectMIME sniffs the content, then falls back to the extension, then to a
// text check.
func DetectMIME(name string, head []byte) string {
	if len(head) > 512 {
		head = head[:512]
	}
	if m := http.DetectContentType(head); m != "application/octet-stream" {
		return m
	}
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	if isLikelyUTF8(head) {
		return "text/plain"
	}
	return "application/octet-stream"
}

func isLikelyUTF8(head []byte) bool {
	r := bufio.NewReader(bytes.NewReader(head))
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			return true
		}
		if ch == utf8.RuneError {
			return false
		}
	}
}
