package cmd

import (
	"os"
	"strings"

	"github.com/BitPonyLLC/carhues/internal/image_matcher"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	hexCmd.Flags().String("algorithm", "", "how the dominant color is chosen (default from extract)")
	rootCmd.AddCommand(hexCmd)
}

var hexCmd = &cobra.Command{
	Use:   "hex <url|path>...",
	Short: "Prints the dominant color of images",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algorithm, _ := cmd.Flags().GetString("algorithm")
		if algorithm == "" {
			algorithm = viper.GetString("extract.algorithm")
		}

		dc, err := newDominantColors(algorithm)
		if err != nil {
			return fail(2, err)
		}

		for _, arg := range args {
			var color string
			if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
				color, err = dc.HexOf(cmd.Context(), arg)
			} else {
				var data []byte
				data, err = os.ReadFile(arg)
				if err == nil {
					color, err = image_matcher.GetDominantColorOf(data, dc.Algorithm)
				}
			}

			if err != nil {
				return fail(1, "can't determine dominant color of %s: %w", arg, err)
			}

			cmd.Printf("%s = %s\n", arg, color)
		}

		return nil
	},
}
