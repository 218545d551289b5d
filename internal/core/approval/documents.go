package approval

import "strings"

// SplitDocuments breaks a comma-joined document reference field into
// its individual storage paths. Empty segments are dropped so a
// trailing comma does not produce a phantom document.
func SplitDocuments(field string) []string {
	if field == "" {
		return nil
	}

	parts := strings.Split(field, ",")
	docs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			docs = append(docs, p)
		}
	}
	return docs
}

// DisplayName derives the file name shown to the user from a stored
// document reference: the substring after the last path separator,
// accepting both forward and back slashes.
func DisplayName(ref string) string {
	if ref == "" {
		return ""
	}

	idx := strings.LastIndexAny(ref, `/\`)
	return ref[idx+1:]
}
