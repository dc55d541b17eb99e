// Package enrich drives a single sequential pass over the catalog, handing
// every car that has color images to an Enricher. Enrichers recover from
// per-item failures themselves; a run only stops early when its context is
// canceled.
package enrich

import (
	"context"
	"fmt"

	"github.com/BitPonyLLC/carhues/pkg/catalog"
	"github.com/BitPonyLLC/carhues/pkg/events"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

// Enricher derives color metadata for the color images of one car.
type Enricher interface {
	Enrich(ctx context.Context, log *zerolog.Logger, id string, car *catalog.Car) (Result, error)
	String() string
}

// Fetcher retrieves remote content.
type Fetcher interface {
	Bytes(ctx context.Context, url string) ([]byte, error)
	Page(ctx context.Context, url string) (string, error)
}

// Result is the outcome for one car.
type Result struct {
	Images  int  // color images visited
	Updated int  // color images given data from the remote side
	OK      bool // whether the car counts as a success
}

// Stats accumulates Results over a run.
type Stats struct {
	Cars   int // cars with color images
	Images int // color images across those cars

	Processed       int
	Successful      int
	ImagesProcessed int
	Updated         int
}

// Failed is the number of processed cars that were not a success.
func (s Stats) Failed() int {
	return s.Processed - s.Successful
}

// SuccessRate is the percentage of processed cars that were a success.
func (s Stats) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Successful) * 100 / float64(s.Processed)
}

// Progress is readable from other goroutines while a run is underway.
type Progress struct {
	Cars   atomic.Int64
	Images atomic.Int64
}

func (p *Progress) String() string {
	return fmt.Sprintf("cars=%d images=%d", p.Cars.Load(), p.Images.Load())
}

// CarStarted is emitted before a car is handed to the Enricher.
type CarStarted struct {
	Pipeline string
	Index    int // 1-based
	Total    int
	ID       string
	Car      *catalog.Car
}

// CarDone is emitted after a car has been enriched.
type CarDone struct {
	Pipeline string
	Index    int // 1-based
	ID       string
	Result   Result
	Stats    Stats // running totals including this car
}

// Runner walks a catalog in document order.
type Runner struct {
	Log      *zerolog.Logger
	Events   *events.Manager // optional
	Progress *Progress       // optional
}

// Run passes every car with color images to e and returns the accumulated
// stats. The error is non-nil only if ctx was canceled, in which case the
// catalog holds a partial result and should not be saved.
func (r *Runner) Run(ctx context.Context, cat *catalog.Catalog, e Enricher) (Stats, error) {
	ids := Selected(cat)

	stats := Stats{Cars: len(ids)}
	for _, id := range ids {
		stats.Images += len(cat.Car(id).ColorImages)
	}

	rlog := r.logger().With().Str("pipeline", e.String()).Logger()
	rlog.Info().Int("cars", stats.Cars).Int("images", stats.Images).Int("catalog", cat.Len()).Msg("starting")

	for i, id := range ids {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		car := cat.Car(id)
		r.Events.Emit(CarStarted{Pipeline: e.String(), Index: i + 1, Total: len(ids), ID: id, Car: car})

		clog := rlog.With().Str("car", id).Logger()
		res, err := e.Enrich(ctx, &clog, id, car)

		stats.add(res)
		if r.Progress != nil {
			r.Progress.Cars.Inc()
			r.Progress.Images.Add(int64(res.Images))
		}

		if err != nil {
			rlog.Warn().Err(err).Int("processed", stats.Processed).Int("cars", stats.Cars).Msg("stopped")
			return stats, err
		}

		r.Events.Emit(CarDone{Pipeline: e.String(), Index: i + 1, ID: id, Result: res, Stats: stats})
	}

	rlog.Info().Int("processed", stats.Processed).Int("successful", stats.Successful).
		Int("images", stats.ImagesProcessed).Msg("finished")

	return stats, nil
}

// Selected lists, in document order, the cars with at least one color image.
func Selected(cat *catalog.Catalog) []string {
	ids := []string{}
	for _, id := range cat.IDs() {
		if cat.Car(id).HasColorImages() {
			ids = append(ids, id)
		}
	}
	return ids
}

//--------------------------------------------------------------------------------
// private

func (r *Runner) logger() *zerolog.Logger {
	if r.Log == nil {
		return &log.Logger
	}
	return r.Log
}

func (s *Stats) add(res Result) {
	s.Processed++
	s.ImagesProcessed += res.Images
	s.Updated += res.Updated
	if res.OK {
		s.Successful++
	}
}
