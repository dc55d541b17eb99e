// Package colorpage pulls the paint colors offered for a car out of its
// catalog page. Two interchangeable extractors are registered: "dom" walks the
// parsed document and "text" pattern-matches the raw markup. Both apply the
// same label rules and return colors in display order.
package colorpage

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Color is one paint option found on a page. Hex is empty when the page
// carried no usable swatch color.
type Color struct {
	Name string
	Hex  string
}

// Extractor finds the colors on a page.
type Extractor interface {
	Extract(html string) ([]Color, error)
	String() string
}

// DefaultExtractor is the name of the extractor used unless configured
// otherwise.
const DefaultExtractor = "dom"

// Get returns the extractor registered as name.
func Get(name string) (Extractor, error) {
	e, ok := registeredExtractors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown parser: %s (valid parsers: %v)", name, Names())
	}
	return e, nil
}

// Names lists the registered extractors.
func Names() []string {
	names := make([]string, 0, len(registeredExtractors))
	for name := range registeredExtractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeLabel turns the visible label of a color control into a color name.
// It reports false for controls that are not colors: page furniture such as
// expand/collapse buttons, two-tone combinations, and trim designators.
func NormalizeLabel(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" || isExcludedWord(label) {
		return "", false
	}

	// two-tone paints are sold as separate options
	if strings.Contains(label, "+") {
		return "", false
	}

	if modelDesignatorRE.MatchString(label) {
		return "", false
	}

	name := label
	if m := codeSuffixRE.FindStringSubmatch(label); m != nil {
		name = strings.TrimSpace(m[1])
	}

	length := utf8.RuneCountInString(name)
	if length < 2 || length > 60 {
		return "", false
	}

	return name, true
}

// ParseHex finds a "background: #xxx" declaration in an inline style and
// returns it as lowercase #rrggbb. It returns "" if there is none.
func ParseHex(style string) string {
	m := backgroundRE.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	return normalizeHex(m[1])
}

//--------------------------------------------------------------------------------
// private

// UI words for expand, collapse, close, more, and show all
var excludedWords = []string{"펼치기", "접기", "닫기", "더보기", "전체보기"}

var (
	modelDesignatorRE = regexp.MustCompile(`^[A-Za-z가-힣\s]+\([A-Z]+\d+\)$`)
	codeSuffixRE      = regexp.MustCompile(`([가-힣A-Za-z\s\-.]+?)\s*\([A-Z0-9\-]+\)$`)
	backgroundRE      = regexp.MustCompile(`background\s*:\s*#([0-9a-fA-F]{3,6})`)
)

var registeredExtractors = map[string]Extractor{}

func register(e Extractor) {
	registeredExtractors[e.String()] = e
}

func isExcludedWord(label string) bool {
	for _, w := range excludedWords {
		if label == w {
			return true
		}
	}
	return false
}

// normalizeHex accepts the 3 and 6 digit forms only
func normalizeHex(digits string) string {
	digits = strings.ToLower(digits)

	switch len(digits) {
	case 6:
		return "#" + digits
	case 3:
		return "#" + string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	default:
		return ""
	}
}

func appendColor(colors []Color, label, hex string) []Color {
	name, ok := NormalizeLabel(label)
	if !ok {
		return colors
	}
	return append(colors, Color{Name: name, Hex: hex})
}
