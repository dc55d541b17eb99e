package enrich

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BitPonyLLC/carhues/pkg/catalog"
	"github.com/BitPonyLLC/carhues/pkg/colorpage"
	"github.com/BitPonyLLC/carhues/pkg/util"

	"github.com/rs/zerolog"
)

// DefaultPageURL is the catalog page listing the colors of a car. {id} is
// replaced by the car identifier.
const DefaultPageURL = "https://auto.danawa.com/auto/?Work=model&Model={id}"

// DefaultPageDelay is the pause after each car page is processed.
const DefaultPageDelay = 150 * time.Millisecond

// ColorNames scrapes the catalog page of each car and merges the colors it
// lists onto the car's color images by position.
type ColorNames struct {
	Fetcher   Fetcher
	Extractor colorpage.Extractor
	URL       string
	Delay     time.Duration
}

var _ Enricher = (*ColorNames)(nil) // ensures we conform to the Enricher interface

func (cn *ColorNames) String() string {
	return "scrape"
}

func (cn *ColorNames) Enrich(ctx context.Context, log *zerolog.Logger, id string, car *catalog.Car) (Result, error) {
	res := Result{Images: len(car.ColorImages)}
	label := fmt.Sprintf("[%s] %s %s", id, car.Brand, car.Name)

	colors, err := cn.Colors(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		// no pause here: nothing was asked of the server beyond the failed request
		log.Warn().Err(err).Msg("unable to get colors")
		setDefaults(car.ColorImages)
		return res, nil
	}

	if len(colors) == 0 {
		log.Info().Msgf("%s: No colors found", label)
		setDefaults(car.ColorImages)
	} else {
		res.OK = true
		res.Updated = Merge(car.ColorImages, colors, car.SelectableOptions)

		if len(colors) != len(car.ColorImages) {
			log.Warn().Int("colors", len(colors)).Int("images", len(car.ColorImages)).
				Msg("color count does not match image count; merged by position")
		}

		log.Info().Msgf("%s: Found %d colors (images: %d)", label, len(colors), len(car.ColorImages))
	}

	if util.Pause(ctx, cn.Delay) {
		return res, ctx.Err()
	}

	return res, nil
}

// Colors fetches the page for car id and extracts its colors.
func (cn *ColorNames) Colors(ctx context.Context, id string) ([]colorpage.Color, error) {
	page, err := cn.Fetcher.Page(ctx, PageURL(cn.URL, id))
	if err != nil {
		return nil, err
	}

	colors, err := cn.Extractor.Extract(page)
	if err != nil {
		return nil, fmt.Errorf("%s parser: %w", cn.Extractor, err)
	}

	return colors, nil
}

// PageURL fills the car identifier into template.
func PageURL(template, id string) string {
	if template == "" {
		template = DefaultPageURL
	}
	return strings.ReplaceAll(template, "{id}", url.QueryEscape(id))
}

// Merge pairs colors with images by position and returns the number of images
// that received a color. Images past the end of colors keep what they have and
// get an empty name and zero price if those are missing. A color without a hex
// leaves the image's hex alone.
func Merge(images []*catalog.ColorImage, colors []colorpage.Color, options []catalog.Option) int {
	updated := 0

	for i, ci := range images {
		if i >= len(colors) {
			ci.SetDefaults()
			continue
		}

		c := colors[i]
		ci.SetName(c.Name)
		if c.Hex != "" {
			ci.SetHex(c.Hex)
		}
		ci.SetPrice(PriceOf(c.Name, options))
		updated++
	}

	return updated
}

// PriceOf looks up the price of the color called name among the color
// options of a car. Only options whose name marks them as a color or exterior
// option are considered; the first one mentioning the whole name, or any word
// of it longer than one character, wins. Spaces and case are ignored. It
// returns 0 if nothing matches.
func PriceOf(name string, options []catalog.Option) int {
	if name == "" || len(options) == 0 {
		return 0
	}

	target := compact(name)

	words := []string{}
	for _, w := range strings.Fields(name) {
		if utf8.RuneCountInString(w) > 1 {
			words = append(words, strings.ToLower(w))
		}
	}

	for _, opt := range options {
		if !isColorOption(opt.Name) {
			continue
		}

		optName := compact(opt.Name)
		if strings.Contains(optName, target) {
			return opt.Price
		}

		for _, w := range words {
			if strings.Contains(optName, w) {
				return opt.Price
			}
		}
	}

	return 0
}

//--------------------------------------------------------------------------------
// private

// "color", "color" (alternate spelling), and "exterior"
var colorOptionMarkers = []string{"컬러", "색상", "외장"}

func isColorOption(name string) bool {
	for _, marker := range colorOptionMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

func compact(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

func setDefaults(images []*catalog.ColorImage) {
	for _, ci := range images {
		ci.SetDefaults()
	}
}
