// Package languages holds the static registry of supported language codes.
package languages

import "maps"

// Language groups
var (
	// Languages of the Indian subcontinent.
	regional = map[string]string{
		"hi":  "Hindi",
		"bn":  "Bengali",
		"te":  "Telugu",
		"mr":  "Marathi",
		"ta":  "Tamil",
		"gu":  "Gujarati",
		"kn":  "Kannada",
		"ml":  "Malayalam",
		"pa":  "Punjabi",
		"or":  "Odia",
		"as":  "Assamese",
		"ks":  "Kashmiri",
		"sd":  "Sindhi",
		"ne":  "Nepali",
		"sa":  "Sanskrit",
		"ur":  "Urdu",
		"kok": "Konkani",
		"mai": "Maithili",
		"sat": "Santali",
		"doi": "Dogri",
		"mni": "Manipuri",
		"brx": "Bodo",
	}

	general = map[string]string{
		"en": "English",
		"es": "Spanish",
		"fr": "French",
		"zh": "Chinese",
		"ar": "Arabic",
	}

	all = merge(regional, general)
)

// Registry is a snapshot of the supported languages. Callers get copies and
// may mutate them freely.
type Registry struct {
	Regional map[string]string
	General  map[string]string
	All      map[string]string
}

// List returns the regional and general groups and their union.
func List() Registry {
	return Registry{
		Regional: maps.Clone(regional),
		General:  maps.Clone(general),
		All:      maps.Clone(all),
	}
}

// Name returns the display name of code, or "" when unsupported.
func Name(code string) string {
	return all[code]
}

// Supported reports whether code is in the registry.
func Supported(code string) bool {
	_, ok := all[code]
	return ok
}

// merge builds the union of both groups. A code present in both resolves to
// the general entry.
func merge(regional, general map[string]string) map[string]string {
	out := make(map[string]string, len(regional)+len(general))
	maps.Copy(out, regional)
	maps.Copy(out, general)
	return out
}
