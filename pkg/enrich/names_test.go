package enrich

import (
	"testing"

	"github.com/BitPonyLLC/carhues/pkg/catalog"
	"github.com/BitPonyLLC/carhues/pkg/colorpage"

	"github.com/stretchr/testify/require"
)

func images(t *testing.T, content string) []*catalog.ColorImage {
	cat := parse(t, `{"1": {"colorImages": %s}}`, content)
	return cat.Car("1").ColorImages
}

func TestMergeMoreImagesThanColors(t *testing.T) {
	imgs := images(t, `[
  {"imageUrl": "a", "hex": "#111111"},
  {"imageUrl": "b", "hex": "#222222"},
  {"imageUrl": "c", "hex": "#333333"}
]`)

	options := []catalog.Option{{Name: "외장 컬러 - 화이트", Price: 150000}}
	colors := []colorpage.Color{
		{Name: "화이트", Hex: "#ffffff"},
		{Name: "블랙"},
	}

	require.Equal(t, 2, Merge(imgs, colors, options))

	require.Equal(t, "화이트", str(imgs[0].Name))
	require.Equal(t, "#ffffff", str(imgs[0].Hex))
	require.Equal(t, 150000, *imgs[0].Price)

	require.Equal(t, "블랙", str(imgs[1].Name))
	require.Equal(t, "#222222", str(imgs[1].Hex))
	require.Equal(t, 0, *imgs[1].Price)

	require.Equal(t, "", str(imgs[2].Name))
	require.Equal(t, "#333333", str(imgs[2].Hex))
	require.Equal(t, 0, *imgs[2].Price)
}

func TestMergeMoreColorsThanImages(t *testing.T) {
	imgs := images(t, `[{"imageUrl": "a", "hex": "#111111"}]`)

	colors := []colorpage.Color{{Name: "Red", Hex: "#ff0000"}, {Name: "Blue", Hex: "#0000ff"}}
	require.Equal(t, 1, Merge(imgs, colors, nil))
	require.Equal(t, "Red", str(imgs[0].Name))
	require.Equal(t, "#ff0000", str(imgs[0].Hex))
}

func TestMergeNoColors(t *testing.T) {
	imgs := images(t, `[
  {"imageUrl": "a", "hex": "#111111"},
  {"imageUrl": "b", "hex": "#222222", "name": "기존", "price": 5000}
]`)

	require.Zero(t, Merge(imgs, nil, nil))

	require.Equal(t, "", str(imgs[0].Name))
	require.Equal(t, 0, *imgs[0].Price)
	require.Equal(t, "#111111", str(imgs[0].Hex))

	require.Equal(t, "기존", str(imgs[1].Name))
	require.Equal(t, 5000, *imgs[1].Price)
	require.Equal(t, "#222222", str(imgs[1].Hex))
}

func TestPriceOf(t *testing.T) {
	options := []catalog.Option{
		{Name: "썬루프", Price: 1200000},
		{Name: "외장 컬러 - 화이트", Price: 150000},
		{Name: "색상: 매트 그레이", Price: 300000},
		{Name: "외장 Mythos Black", Price: 80000},
		{Name: "외장 Mythos Blue", Price: 90000},
	}

	testCases := []struct {
		name  string
		price int
	}{
		{"화이트", 150000},
		{"블랙", 0},
		{"매트그레이", 300000},
		{"Matte 그레이", 300000},
		{"mythos black", 80000},
		{"Mythos Blue", 80000}, // "mythos" is found in the first exterior option
		{"썬루프", 0},
		{"", 0},
		{"A 펄", 0},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.price, PriceOf(tc.name, options), tc.name)
	}

	require.Zero(t, PriceOf("화이트", nil))
}
