package enrich

import (
	"context"
	"time"

	"github.com/BitPonyLLC/carhues/internal/image_matcher"
	"github.com/BitPonyLLC/carhues/pkg/catalog"
	"github.com/BitPonyLLC/carhues/pkg/util"

	"github.com/rs/zerolog"
)

// DefaultImageDelay is the pause after each image download.
const DefaultImageDelay = 100 * time.Millisecond

// DominantColors sets the hex of every color image to the dominant color of
// its swatch. An image that can't be fetched or decoded gets Fallback.
type DominantColors struct {
	Fetcher   Fetcher
	Algorithm image_matcher.Algorithm
	Fallback  string
	Delay     time.Duration
}

var _ Enricher = (*DominantColors)(nil) // ensures we conform to the Enricher interface

func (dc *DominantColors) String() string {
	return "extract"
}

func (dc *DominantColors) Enrich(ctx context.Context, log *zerolog.Logger, id string, car *catalog.Car) (Result, error) {
	res := Result{}

	log.Debug().Str("name", car.DisplayName(id)).Int("images", len(car.ColorImages)).Msg("processing")

	for _, ci := range car.ColorImages {
		hex, err := dc.HexOf(ctx, ci.ImageURL)
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if err != nil {
			log.Warn().Err(err).Str("url", ci.ImageURL).Str("fallback", hex).Msg("unable to determine dominant color")
		} else {
			log.Debug().Str("url", ci.ImageURL).Str("hex", hex).Msg("dominant color")
			res.Updated++
		}

		ci.SetHex(hex)
		res.Images++

		if util.Pause(ctx, dc.Delay) {
			return res, ctx.Err()
		}
	}

	res.OK = res.Updated == res.Images
	return res, nil
}

// HexOf downloads the image at url and returns its dominant color. It never
// returns an empty color: on failure the fallback is returned with the error.
func (dc *DominantColors) HexOf(ctx context.Context, url string) (string, error) {
	data, err := dc.Fetcher.Bytes(ctx, url)
	if err != nil {
		return dc.fallback(), err
	}

	hex, err := image_matcher.GetDominantColorOf(data, dc.algorithm())
	if err != nil {
		return dc.fallback(), err
	}

	return hex, nil
}

//--------------------------------------------------------------------------------
// private

func (dc *DominantColors) fallback() string {
	if dc.Fallback == "" {
		return image_matcher.FallbackColor
	}
	return dc.Fallback
}

func (dc *DominantColors) algorithm() image_matcher.Algorithm {
	if dc.Algorithm == "" {
		return image_matcher.Mode
	}
	return dc.Algorithm
}
