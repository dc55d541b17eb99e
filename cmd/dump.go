package cmd

import (
	"fmt"
	"io"

	"github.com/BitPonyLLC/carhues/buildinfo"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var dumpCmd = &cobra.Command{
	Use:    "dump config|name|desc|full|version...",
	Hidden: true,
	Args:   cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			err := dump(arg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

// effectiveConfig is what a run would use after flags, the config file, and
// defaults are combined and validated. It is also a valid config file.
type effectiveConfig struct {
	Catalog       string `toml:"catalog"`
	LogLevel      string `toml:"log-level"`
	LogDst        string `toml:"log-dst"`
	UserAgent     string `toml:"user-agent"`
	Timeout       string `toml:"timeout"`
	Nice          int    `toml:"nice"`
	ProgressEvery int    `toml:"progress-every"`
	DryRun        bool   `toml:"dry-run"`

	Extract struct {
		Algorithm string `toml:"algorithm"`
		Fallback  string `toml:"fallback"`
		Delay     string `toml:"delay"`
	} `toml:"extract"`

	Scrape struct {
		Parser string `toml:"parser"`
		URL    string `toml:"url"`
		Delay  string `toml:"delay"`
	} `toml:"scrape"`
}

func dump(key string, writer io.Writer) error {
	val := ""

	switch key {
	case "config":
		return showConfig(writer)
	case "name":
		val = buildinfo.App.Name
	case "desc":
		val = buildinfo.App.Description
	case "full":
		val = buildinfo.App.FullDescription
	case "version":
		val = buildinfo.App.String()
	default:
		return fmt.Errorf("unknown dump key requested: %s", key)
	}

	_, err := fmt.Fprintln(writer, val)
	if err != nil {
		return err
	}

	return nil
}

func showConfig(writer io.Writer) error {
	ec, err := resolveConfig()
	if err != nil {
		return fail(2, err)
	}

	content, err := toml.Marshal(ec)
	if err != nil {
		return err
	}

	_, err = writer.Write(content)
	return err
}

// resolveConfig builds the pipelines the same way extract and scrape do and
// reports their settings
func resolveConfig() (*effectiveConfig, error) {
	dc, err := newDominantColors(viper.GetString("extract.algorithm"))
	if err != nil {
		return nil, err
	}

	cn, err := newColorNames(viper.GetString("scrape.parser"), viper.GetString("scrape.url"))
	if err != nil {
		return nil, err
	}

	ec := &effectiveConfig{
		Catalog:       viper.GetString(catalogLabel),
		LogLevel:      viper.GetString("log-level"),
		LogDst:        viper.GetString(logDstLabel),
		UserAgent:     viper.GetString("user-agent"),
		Timeout:       viper.GetDuration("timeout").String(),
		Nice:          viper.GetInt("nice"),
		ProgressEvery: viper.GetInt("progress-every"),
		DryRun:        viper.GetBool("dry-run"),
	}

	ec.Extract.Algorithm = string(dc.Algorithm)
	ec.Extract.Fallback = dc.Fallback
	ec.Extract.Delay = dc.Delay.String()

	ec.Scrape.Parser = cn.Extractor.String()
	ec.Scrape.URL = cn.URL
	ec.Scrape.Delay = cn.Delay.String()

	return ec, nil
}
