package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRowMapChineseHeaders(t *testing.T) {
	headers := []string{"名稱", "貨號", "價格", "庫存", "分類"}
	cells := []string{"雷射打印機", "PRN-001", "1299", "12", "HP,Canon"}

	row := buildRowMap(headers, cells)

	assert.Equal(t, "雷射打印機", row["name"])
	assert.Equal(t, "PRN-001", row["sku"])
	assert.Equal(t, "1299", row["price"])
	assert.Equal(t, "12", row["stock"])
	assert.Equal(t, "HP,Canon", row["categories"])
}

func TestBuildRowMapCaseInsensitiveHeaders(t *testing.T) {
	headers := []string{"Name", "SKU", "Price", "Stock"}
	cells := []string{"Laser Printer", "PRN-002", "999.50", "3"}

	row := buildRowMap(headers, cells)

	assert.Equal(t, "Laser Printer", row["name"])
	assert.Equal(t, "PRN-002", row["sku"])
	assert.Equal(t, "999.50", row["price"])
	assert.Equal(t, "3", row["stock"])
}

func TestBuildRowMapShortRow(t *testing.T) {
	headers := []string{"name", "sku", "price"}
	cells := []string{"Only Name"}

	row := buildRowMap(headers, cells)

	assert.Equal(t, "Only Name", row["name"])
	assert.Equal(t, "", row["sku"])
	assert.Equal(t, "", row["price"])
}

func TestCollectImageURLs(t *testing.T) {
	row := map[string]string{
		"image_urls": "https://a.test/1.jpg, https://a.test/2.jpg",
		"圖片":         "https://a.test/2.jpg，https://a.test/3.jpg",
	}

	urls := collectImageURLs(row)

	require.Len(t, urls, 3)
	assert.Equal(t, "https://a.test/1.jpg", urls[0])
	assert.Equal(t, "https://a.test/2.jpg", urls[1])
	assert.Equal(t, "https://a.test/3.jpg", urls[2])
}

func TestCollectImageURLsCleansJunk(t *testing.T) {
	row := map[string]string{
		"image_urls": "`https://a.test/1.jpg`,'https://a.test/2.jpg'",
	}

	urls := collectImageURLs(row)

	require.Len(t, urls, 2)
	assert.Equal(t, "https://a.test/1.jpg", urls[0])
	assert.Equal(t, "https://a.test/2.jpg", urls[1])
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"100", 10000, false},
		{"99.99", 9999, false},
		{"1,299", 129900, false},
		{" 80 ", 8000, false},
		{"-5", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := parseCents(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
		} else {
			require.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.expected, got, "input %q", tt.input)
		}
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "100", formatCents(10000))
	assert.Equal(t, "99.99", formatCents(9999))
	assert.Equal(t, "0.50", formatCents(50))
}

func TestParseBoolCell(t *testing.T) {
	assert.True(t, parseBoolCell("TRUE"))
	assert.True(t, parseBoolCell("1"))
	assert.True(t, parseBoolCell("是"))
	assert.False(t, parseBoolCell("0"))
	assert.False(t, parseBoolCell("false"))
	assert.False(t, parseBoolCell(""))
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, isEmptyRow(map[string]string{"name": "", "sku": ""}))
	assert.False(t, isEmptyRow(map[string]string{"name": "x"}))
}
