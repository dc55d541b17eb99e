package colorpage

import (
	"html"
	"regexp"
)

// TextExtractor finds the color selector without building a document. Only
// buttons whose style attribute is exactly a background color are recognized.
type TextExtractor struct{}

var _ Extractor = TextExtractor{} // ensures we conform to the Extractor interface

func init() {
	register(TextExtractor{})
}

var (
	containerRE = regexp.MustCompile(`(?s)<div class=['"]modelColor['"]>(.*?)</div>\s*</div>`)
	buttonRE    = regexp.MustCompile(`<button[^>]*style=['"]background\s*:\s*#([0-9a-fA-F]{3,6})['"][^>]*>\s*<span class=['"]screen_out['"]>([^<]+)</span>`)
)

func (TextExtractor) String() string {
	return "text"
}

func (TextExtractor) Extract(page string) ([]Color, error) {
	colors := []Color{}

	container := containerRE.FindStringSubmatch(page)
	if container == nil {
		return colors, nil
	}

	for _, m := range buttonRE.FindAllStringSubmatch(container[1], -1) {
		colors = appendColor(colors, html.UnescapeString(m[2]), normalizeHex(m[1]))
	}

	return colors, nil
}
