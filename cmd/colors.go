package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	colorsCmd.Flags().String("parser", "", "how colors are found on a page (default from scrape)")
	colorsCmd.Flags().String("url", "", "the page listing the colors of a car (default from scrape)")
	rootCmd.AddCommand(colorsCmd)
}

var colorsCmd = &cobra.Command{
	Use:   "colors <car-id>...",
	Short: "Prints the colors listed on the catalog page of cars",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser, _ := cmd.Flags().GetString("parser")
		if parser == "" {
			parser = viper.GetString("scrape.parser")
		}

		pageURL, _ := cmd.Flags().GetString("url")
		if pageURL == "" {
			pageURL = viper.GetString("scrape.url")
		}

		cn, err := newColorNames(parser, pageURL)
		if err != nil {
			return fail(2, err)
		}

		for _, id := range args {
			colors, err := cn.Colors(cmd.Context(), id)
			if err != nil {
				return fail(1, "can't get colors of %s: %w", id, err)
			}

			cmd.Printf("%s (%d colors)\n", id, len(colors))
			for _, c := range colors {
				hex := c.Hex
				if hex == "" {
					hex = "-"
				}
				cmd.Printf("  %s = %s\n", c.Name, hex)
			}
		}

		return nil
	},
}
