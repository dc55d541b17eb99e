package cmd

import (
	"fmt"
	"strings"

	"github.com/BitPonyLLC/carhues/internal/image_matcher"
	"github.com/BitPonyLLC/carhues/pkg/enrich"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	extractCmd.Flags().Duration("delay", enrich.DefaultImageDelay,
		"the amount of time to wait after each image (units: ms, s, m)")
	viper.BindPFlag("extract.delay", extractCmd.Flags().Lookup("delay"))

	extractCmd.Flags().String("algorithm", string(image_matcher.Mode),
		fmt.Sprintf("how the dominant color is chosen: %v", image_matcher.Algorithms()))
	viper.BindPFlag("extract.algorithm", extractCmd.Flags().Lookup("algorithm"))

	extractCmd.Flags().String("fallback", image_matcher.FallbackColor,
		"the color recorded when an image can't be fetched or decoded")
	viper.BindPFlag("extract.fallback", extractCmd.Flags().Lookup("fallback"))

	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Sets the hex of every color image to the dominant color of its swatch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dc, err := newDominantColors(viper.GetString("extract.algorithm"))
		if err != nil {
			return fail(2, err)
		}

		return runPipeline(cmd, dc)
	},
}

func newDominantColors(algorithm string) (*enrich.DominantColors, error) {
	alg, err := image_matcher.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}

	fallback := strings.ToLower(viper.GetString("extract.fallback"))
	if !strings.HasPrefix(fallback, "#") {
		fallback = "#" + fallback
	}

	_, _, _, err = image_matcher.HexToRGB(fallback)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback color: %w", err)
	}

	return &enrich.DominantColors{
		Fetcher:   newFetchClient(),
		Algorithm: alg,
		Fallback:  fallback,
		Delay:     viper.GetDuration("extract.delay"),
	}, nil
}
