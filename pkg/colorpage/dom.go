package colorpage

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DOMExtractor reads the color selector from the parsed document: every button
// inside the first div.modelColor is a candidate, labeled by its
// span.screen_out and colored by its inline style.
type DOMExtractor struct{}

var _ Extractor = DOMExtractor{} // ensures we conform to the Extractor interface

func init() {
	register(DOMExtractor{})
}

func (DOMExtractor) String() string {
	return "dom"
}

func (DOMExtractor) Extract(html string) ([]Color, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("unable to parse page: %w", err)
	}

	colors := []Color{}

	container := doc.Find("div.modelColor").First()
	container.Find("button").Each(func(_ int, btn *goquery.Selection) {
		label := btn.Find("span.screen_out").First()
		if label.Length() == 0 {
			return
		}

		style, _ := btn.Attr("style")
		colors = appendColor(colors, label.Text(), ParseHex(style))
	})

	return colors, nil
}
