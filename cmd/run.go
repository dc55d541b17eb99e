package cmd

import (
	"errors"
	"fmt"

	"github.com/BitPonyLLC/carhues/pkg/catalog"
	"github.com/BitPonyLLC/carhues/pkg/enrich"
	"github.com/BitPonyLLC/carhues/pkg/events"
	"github.com/BitPonyLLC/carhues/pkg/pidpath"
	"github.com/BitPonyLLC/carhues/pkg/termwrap"
	"github.com/BitPonyLLC/carhues/pkg/util"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runPipeline takes the catalog lock, passes every car through e, and writes
// the catalog back once at the end. Nothing is written if the run is stopped.
func runPipeline(cmd *cobra.Command, e enrich.Enricher) error {
	path := viper.GetString(catalogLabel)

	pidPath = pidpath.For(path, 0644)
	err := pidPath.CheckAndSet()
	if err != nil {
		var locked *pidpath.LockedError
		if errors.As(err, &locked) {
			return fail(3, err)
		}
		return fail(1, "unable to lock %s: %w", path, err)
	}

	if nice := viper.GetInt("nice"); nice != 0 {
		err = util.BeNice(nice)
		if err != nil {
			log.Warn().Err(err).Msg("continuing at normal priority")
		}
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return fail(5, err)
	}

	log.Info().Str("path", path).Int("cars", cat.Len()).Msg("loaded")

	manager := &events.Manager{}
	watcher := manager.Handle(progressReporter(viper.GetInt("progress-every")))

	runner := &enrich.Runner{Log: &log.Logger, Events: manager, Progress: &progress}
	stats, err := runner.Run(cmd.Context(), cat, e)
	watcher.Stop()

	if err != nil {
		return fail(1, "%s stopped after %d of %d cars, catalog not written: %w", e, stats.Processed, stats.Cars, err)
	}

	if viper.GetBool("dry-run") {
		log.Info().Str("path", path).Msg("dry run: catalog not written")
	} else {
		err = cat.Save()
		if err != nil {
			return fail(6, err)
		}
		log.Info().Str("path", path).Msg("updated")
	}

	cmd.Print(tw.Summary("summary", summaryRows(e, stats)))
	return nil
}

func progressReporter(every int) func(events.Event) {
	if every < 1 {
		every = 1
	}

	return func(e events.Event) {
		switch ev := e.(type) {
		case enrich.CarStarted:
			if (ev.Index-1)%every == 0 {
				log.Info().Str("car", ev.ID).Msgf("[%d/%d] Processing: %s (%d colors)",
					ev.Index, ev.Total, ev.Car.DisplayName(ev.ID), len(ev.Car.ColorImages))
			}
		case enrich.CarDone:
			if ev.Index%every == 0 {
				log.Info().Int("images", ev.Stats.ImagesProcessed).Int("total-images", ev.Stats.Images).
					Msgf("Progress: %d/%d cars processed", ev.Index, ev.Stats.Cars)
			}
		}
	}
}

func summaryRows(e enrich.Enricher, stats enrich.Stats) []termwrap.Row {
	switch e.(type) {
	case *enrich.DominantColors:
		return []termwrap.Row{
			{Label: "Total cars", Value: stats.Processed},
			{Label: "Total images", Value: stats.ImagesProcessed},
			{Label: "Colors extracted", Value: stats.Updated},
			{Label: "Fallback colors", Value: stats.ImagesProcessed - stats.Updated},
		}
	default:
		return []termwrap.Row{
			{Label: "Total cars processed", Value: stats.Processed},
			{Label: "Successful scrapes", Value: stats.Successful},
			{Label: "Failed scrapes", Value: stats.Failed()},
			{Label: "Total colors updated", Value: stats.Updated},
			{Label: "Success rate", Value: fmt.Sprintf("%.1f%%", stats.SuccessRate())},
		}
	}
}
