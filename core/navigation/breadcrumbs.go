// Package navigation builds the breadcrumb trail shown above each page.
package navigation

import (
	"strings"
	"unicode"
)

const (
	HomeLabel            = "Home"
	ExaminerDetailsLabel = "Examiner Details"
)

type Breadcrumb struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Breadcrumbs returns the trail for path. The dashboard has none.
// examinerName labels examiner pages; it defaults to "Examiner Details".
func Breadcrumbs(path, examinerName string) []Breadcrumb {
	segments := splitPath(path)
	if len(segments) == 0 || (len(segments) == 1 && segments[0] == "dashboard") {
		return []Breadcrumb{}
	}

	crumbs := []Breadcrumb{{Label: HomeLabel, Path: "/"}}
	if segments[0] != "examiners" || len(segments) == 1 {
		return append(crumbs, Breadcrumb{Label: Title(segments[0]), Path: "/" + segments[0]})
	}

	name := strings.TrimSpace(examinerName)
	if name == "" {
		name = ExaminerDetailsLabel
	}
	examinerPath := "/examiners/" + segments[1]
	crumbs = append(crumbs, Breadcrumb{Label: name, Path: examinerPath})
	if len(segments) > 2 {
		crumbs = append(crumbs, Breadcrumb{Label: Title(segments[2]), Path: examinerPath + "/" + segments[2]})
	}
	return crumbs
}

// Title turns a path segment such as "calculation-history" into "Calculation History".
func Title(segment string) string {
	words := strings.FieldsFunc(segment, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
