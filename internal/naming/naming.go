package naming

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxNameLength bounds canonical names so published paths stay short.
	MaxNameLength = 50
	// Extension is the fixed extension appended to published artifacts.
	Extension = ".png"
	// DefaultCategory is the catch-all bucket for unclassified workflows.
	DefaultCategory = "uncategorized"
)

// foldDiacritics strips combining marks so accented names slug cleanly.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonical maps an arbitrary workflow name to its canonical output form:
// lowercase, diacritics folded, runs of non-alphanumeric characters collapsed
// to a single hyphen, no leading or trailing hyphen, at most MaxNameLength
// characters. The transform is deterministic and idempotent; empty or fully
// symbolic input falls back to "workflow".
func Canonical(name string) string {
	if folded, _, err := transform.String(foldDiacritics, name); err == nil {
		name = folded
	}

	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > MaxNameLength {
		out = strings.TrimRight(out[:MaxNameLength], "-")
	}
	if out == "" {
		return "workflow"
	}
	return out
}

// FileName returns the canonical artifact file name for a workflow name.
func FileName(name string) string {
	return Canonical(name) + Extension
}

// Category classifies a workflow file path into its category bucket by
// scanning path segments from the immediate parent upward. The first segment
// that looks like a category wins; paths with no such segment land in
// DefaultCategory.
func Category(path string) string {
	dir := filepath.Dir(filepath.ToSlash(strings.TrimSpace(path)))
	for {
		seg := filepath.Base(dir)
		if seg == "." || seg == "/" || seg == "" {
			break
		}
		if looksLikeCategory(seg) {
			return seg
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return DefaultCategory
}

// ArtifactPath returns the remote store path for a (category, name) pair.
func ArtifactPath(category, fileName string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	return category + "/" + fileName
}

func looksLikeCategory(segment string) bool {
	return strings.Contains(segment, "_") || strings.EqualFold(segment, DefaultCategory)
}
