package linelog

import (
	"path"
	"strings"

	"github.com/src-d/enry/v2"
)

// ResolveType derives a language tag for a file whose type cell is empty.
// The tag follows the log's convention of lower-case file extensions ("ts",
// "css"); files without an extension fall back to the lower-cased language
// name enry detects from the filename ("makefile", "dockerfile").
func ResolveType(file string) (string, bool) {
	base := path.Base(file)
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(base), "."))

	if ext != "" {
		lang, _ := enry.GetLanguageByExtension("file." + ext)
		if lang == "" {
			return "", false
		}

		return ext, true
	}

	lang, _ := enry.GetLanguageByFilename(base)
	if lang == "" {
		return "", false
	}

	return strings.ToLower(lang), true
}

// DisplayName returns the human-readable language name for a type tag,
// or the tag itself when enry does not know it.
func DisplayName(langType string) string {
	if langType == "" {
		return langType
	}

	lang, _ := enry.GetLanguageByExtension("file." + langType)
	if lang != "" {
		return lang
	}

	lang, _ = enry.GetLanguageByFilename(langType)
	if lang != "" {
		return lang
	}

	return langType
}
