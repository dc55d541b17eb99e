package cmd

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/BitPonyLLC/carhues/pkg/enrich"
	"github.com/BitPonyLLC/carhues/pkg/fetch"
	"github.com/BitPonyLLC/carhues/pkg/termwrap"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func imageServer(t *testing.T) *httptest.Server {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 0xff
		if i%4 == 1 || i%4 == 2 {
			img.Pix[i] = 0
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupRun(t *testing.T, srv *httptest.Server) string {
	path := filepath.Join(t.TempDir(), "cars.json")
	content := `{"1": {"name": "Morning", "colorImages": [{"imageUrl": "` + srv.URL + `/a.png"}]}, "2": {"name": "Ray"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	viper.Set(catalogLabel, path)
	viper.Set("dry-run", false)
	viper.Set("nice", 0)
	viper.Set("progress-every", 1)

	tw = termwrap.NewTermWrap(80, 24)
	failureCode = 1

	t.Cleanup(func() {
		if pidPath != nil {
			pidPath.Release()
			pidPath = nil
		}
	})

	return path
}

func execute(e enrich.Enricher) (string, error) {
	var out bytes.Buffer
	c := &cobra.Command{
		Use:          "test",
		SilenceUsage: true,
		RunE:         func(c *cobra.Command, _ []string) error { return runPipeline(c, e) },
	}
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs([]string{})
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func newExtractor() *enrich.DominantColors {
	return &enrich.DominantColors{Fetcher: fetch.NewClient("", time.Second)}
}

func TestRunPipelineWritesCatalog(t *testing.T) {
	path := setupRun(t, imageServer(t))

	out, err := execute(newExtractor())
	require.NoError(t, err)
	require.Contains(t, out, "SUMMARY")
	require.Contains(t, out, "Total images: 1")
	require.Contains(t, out, "Colors extracted: 1")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `"hex": "#ff0000"`)
	require.False(t, strings.HasSuffix(string(content), "\n"))
}

func TestRunPipelineDryRun(t *testing.T) {
	path := setupRun(t, imageServer(t))
	viper.Set("dry-run", true)
	defer viper.Set("dry-run", false)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = execute(newExtractor())
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestRunPipelineLocked(t *testing.T) {
	path := setupRun(t, imageServer(t))
	require.NoError(t, os.WriteFile(path+".pid", []byte(strconv.Itoa(os.Getppid())), 0644))

	_, err := execute(newExtractor())
	require.Error(t, err)
	require.Equal(t, 3, failureCode)
}

func TestRunPipelineMissingCatalog(t *testing.T) {
	path := setupRun(t, imageServer(t))
	viper.Set(catalogLabel, path+".missing")

	_, err := execute(newExtractor())
	require.Error(t, err)
	require.Equal(t, 5, failureCode)
}

func TestRunPipelineCanceled(t *testing.T) {
	path := setupRun(t, imageServer(t))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &cobra.Command{
		Use:          "test",
		SilenceUsage: true,
		RunE:         func(c *cobra.Command, _ []string) error { return runPipeline(c, newExtractor()) },
	}
	c.SetArgs([]string{})
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	require.Error(t, c.ExecuteContext(ctx))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestSummaryRows(t *testing.T) {
	stats := enrich.Stats{Processed: 3, Successful: 2, ImagesProcessed: 7, Updated: 5}

	rows := summaryRows(&enrich.ColorNames{}, stats)
	require.Equal(t, termwrap.Row{Label: "Failed scrapes", Value: 1}, rows[2])
	require.Equal(t, termwrap.Row{Label: "Success rate", Value: "66.7%"}, rows[4])

	rows = summaryRows(newExtractor(), stats)
	require.Equal(t, termwrap.Row{Label: "Fallback colors", Value: 2}, rows[3])
}

func TestNewColorNamesValidates(t *testing.T) {
	_, err := newColorNames("dom", "https://example.com/cars")
	require.Error(t, err)

	_, err = newColorNames("xpath", enrich.DefaultPageURL)
	require.Error(t, err)

	cn, err := newColorNames("text", enrich.DefaultPageURL)
	require.NoError(t, err)
	require.Equal(t, "text", cn.Extractor.String())
}

func TestNewDominantColorsValidates(t *testing.T) {
	viper.Set("extract.fallback", "gray")
	_, err := newDominantColors("mode")
	require.Error(t, err)

	viper.Set("extract.fallback", "#ABCDEF")
	defer viper.Set("extract.fallback", "#808080")

	_, err = newDominantColors("median")
	require.Error(t, err)

	dc, err := newDominantColors("kmeans")
	require.NoError(t, err)
	require.Equal(t, "#abcdef", dc.Fallback)
}
