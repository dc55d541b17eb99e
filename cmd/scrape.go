package cmd

import (
	"fmt"
	"strings"

	"github.com/BitPonyLLC/carhues/pkg/colorpage"
	"github.com/BitPonyLLC/carhues/pkg/enrich"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	scrapeCmd.Flags().Duration("delay", enrich.DefaultPageDelay,
		"the amount of time to wait after each car (units: ms, s, m)")
	viper.BindPFlag("scrape.delay", scrapeCmd.Flags().Lookup("delay"))

	scrapeCmd.Flags().String("parser", colorpage.DefaultExtractor,
		fmt.Sprintf("how colors are found on a page: %v", colorpage.Names()))
	viper.BindPFlag("scrape.parser", scrapeCmd.Flags().Lookup("parser"))

	scrapeCmd.Flags().String("url", enrich.DefaultPageURL,
		"the page listing the colors of a car ({id} is replaced by the car identifier)")
	viper.BindPFlag("scrape.url", scrapeCmd.Flags().Lookup("url"))

	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Sets the name, hex, and price of every color image from the car's catalog page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cn, err := newColorNames(viper.GetString("scrape.parser"), viper.GetString("scrape.url"))
		if err != nil {
			return fail(2, err)
		}

		return runPipeline(cmd, cn)
	},
}

func newColorNames(parser, pageURL string) (*enrich.ColorNames, error) {
	extractor, err := colorpage.Get(parser)
	if err != nil {
		return nil, err
	}

	if !strings.Contains(pageURL, "{id}") {
		return nil, fmt.Errorf("page URL must contain {id}: %s", pageURL)
	}

	return &enrich.ColorNames{
		Fetcher:   newFetchClient(),
		Extractor: extractor,
		URL:       pageURL,
		Delay:     viper.GetDuration("scrape.delay"),
	}, nil
}
