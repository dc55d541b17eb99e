// Package buildinfo exposes the static application metadata embedded at build
// time.
package buildinfo

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppInfo provides static data about the running application
type AppInfo struct {
	buildInfo

	Name            string `yaml:"name"`
	URL             string `yaml:"url"`
	ReverseDNS      string `yaml:"reverse_dns"`
	Vendor          string `yaml:"vendor"`
	Description     string `yaml:"description"`
	FullDescription string `yaml:"full_description"`
}

type buildInfo struct {
	Version    string    `yaml:"version"`
	CommitHash string    `yaml:"commit_hash"`
	BuildTime  time.Time `yaml:"build_time"`
}

var App AppInfo
var All string

//go:embed app.yml
var app []byte

//go:embed build.yml
var build []byte

func init() {
	err := parse(app, build, &App)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to parse embedded build info")
	}

	All = App.String()
}

// String reports the version along with where and when it was built.
func (ai AppInfo) String() string {
	return fmt.Sprintf("%s (%s at %s)", ai.Version, ai.CommitHash, ai.BuildTime.Format(time.RFC3339))
}

//--------------------------------------------------------------------------------
// private

func parse(appContent, buildContent []byte, ai *AppInfo) error {
	err := yaml.Unmarshal(appContent, ai)
	if err != nil {
		return fmt.Errorf("unable to parse app info: %w", err)
	}

	err = yaml.Unmarshal(buildContent, &ai.buildInfo)
	if err != nil {
		return fmt.Errorf("unable to parse build info: %w", err)
	}

	return nil
}
