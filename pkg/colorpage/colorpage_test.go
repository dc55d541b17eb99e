package colorpage

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const modelPage = `<!DOCTYPE html>
<html><body>
<div class="header"><button type="button"><span class="screen_out">메뉴</span></button></div>
<div class="modelColor">
  <div class="list">
    <button type="button" style="background:#F5F5F0"><span class="screen_out">세레니티 화이트 펄 (SAW)</span></button>
    <button type="button" style="background: #000"><span class="screen_out">어비스 블랙 펄(A2B)</span></button>
    <button type="button" style="background:#333333"><span class="screen_out">화이트 + 블랙 투톤</span></button>
    <button type="button" style="background:#444444"><span class="screen_out"> Midnight Blue </span></button>
    <button type="button" class="more"><span class="screen_out">펼치기</span></button>
    <button type="button" style="background:#555555"><span class="screen_out">그랜저 (GN7)</span></button>
    <button type="button" style="background:#666666">no label</button>
    <button type="button" style="background:#123456"><span class="screen_out">Black &amp; Gold</span></button>
  </div>
</div>
</body></html>`

var modelPageColors = []Color{
	{Name: "세레니티 화이트 펄", Hex: "#f5f5f0"},
	{Name: "어비스 블랙 펄", Hex: "#000000"},
	{Name: "Midnight Blue", Hex: "#444444"},
	{Name: "Black & Gold", Hex: "#123456"},
}

func TestExtractorsAgree(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			e, err := Get(name)
			require.NoError(t, err)

			colors, err := e.Extract(modelPage)
			require.NoError(t, err)

			if diff := cmp.Diff(modelPageColors, colors); diff != "" {
				t.Errorf("colors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractorsWithoutSelector(t *testing.T) {
	for _, name := range Names() {
		e, err := Get(name)
		require.NoError(t, err)

		colors, err := e.Extract(`<html><body><div class="other"></div></body></html>`)
		require.NoError(t, err)
		require.Empty(t, colors, name)
	}
}

func TestExpandButtonProducesNothing(t *testing.T) {
	page := `<div class="modelColor"><div>` +
		`<button style="background:#ffffff"><span class="screen_out">펼치기</span></button>` +
		`</div></div>`

	for _, name := range Names() {
		e, err := Get(name)
		require.NoError(t, err)

		colors, err := e.Extract(page)
		require.NoError(t, err)
		require.Empty(t, colors, name)
	}
}

func TestDOMKeepsColorsWithoutSwatch(t *testing.T) {
	page := strings.Replace(modelPage,
		`<button type="button" class="more">`,
		`<button type="button"><span class="screen_out">Polar White</span></button><button type="button" class="more">`, 1)

	colors, err := DOMExtractor{}.Extract(page)
	require.NoError(t, err)
	require.Len(t, colors, 5)
	require.Equal(t, Color{Name: "Polar White"}, colors[3])

	// the textual form only recognizes styled buttons
	colors, err = TextExtractor{}.Extract(page)
	require.NoError(t, err)
	require.Equal(t, modelPageColors, colors)
}

func TestNormalizeLabel(t *testing.T) {
	testCases := []struct {
		label string
		name  string
		ok    bool
	}{
		{"세레니티 화이트 펄 (SAW)", "세레니티 화이트 펄", true},
		{"  크리미 화이트 펄(WW-2)  ", "크리미 화이트 펄", true},
		{"크리미 화이트 펄(WW2)", "", false},
		{"Mythos Black Metallic (0E-0E)", "Mythos Black Metallic", true},
		{"Alpine White", "Alpine White", true},
		{"펼치기", "", false},
		{"접기", "", false},
		{"닫기", "", false},
		{"더보기", "", false},
		{"전체보기", "", false},
		{"화이트 + 블랙 투톤", "", false},
		{"그랜저 (GN7)", "", false},
		{"G(G70)", "", false},
		{"", "", false},
		{"   ", "", false},
		{"빨", "", false},
		{strings.Repeat("가", 61), "", false},
		{strings.Repeat("가", 60), strings.Repeat("가", 60), true},
		{"2 (AB)", "", false},
	}

	for _, tc := range testCases {
		name, ok := NormalizeLabel(tc.label)
		require.Equal(t, tc.ok, ok, "label %q", tc.label)
		require.Equal(t, tc.name, name, "label %q", tc.label)
	}
}

func TestParseHex(t *testing.T) {
	require.Equal(t, "#a1b2c3", ParseHex("background:#A1B2C3"))
	require.Equal(t, "#aabbcc", ParseHex("width: 10px; background : #abc;"))
	require.Equal(t, "", ParseHex("background: red"))
	require.Equal(t, "", ParseHex("background:#abcd"))
	require.Equal(t, "", ParseHex(""))
}

func TestGet(t *testing.T) {
	require.Equal(t, []string{"dom", "text"}, Names())

	e, err := Get("TEXT")
	require.NoError(t, err)
	require.Equal(t, "text", e.String())

	e, err = Get(DefaultExtractor)
	require.NoError(t, err)
	require.Equal(t, "dom", e.String())

	_, err = Get("xpath")
	require.Error(t, err)
}
