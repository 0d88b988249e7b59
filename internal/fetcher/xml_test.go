package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testArticle struct {
	Title  string `xml:"Title"`
	Author string `xml:"Author"`
}

func TestDecodeXMLElements(t *testing.T) {
	doc := `<?xml version="1.0"?>
<Set>
  <Article><Title>Organoid models</Title><Author>Smith</Author></Article>
  <Other>ignored</Other>
  <Article><Title>Liver chips</Title><Author>Garcia</Author></Article>
</Set>`

	items, err := DecodeXMLElements[testArticle](context.Background(), strings.NewReader(doc), "Article")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Organoid models", items[0].Title)
	assert.Equal(t, "Garcia", items[1].Author)
}

func TestDecodeXMLElementsEmpty(t *testing.T) {
	items, err := DecodeXMLElements[testArticle](context.Background(), strings.NewReader("<Set></Set>"), "Article")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeXMLElementsMalformed(t *testing.T) {
	_, err := DecodeXMLElements[testArticle](context.Background(), strings.NewReader("<Set><Article>"), "Article")
	require.Error(t, err)
}

func TestDecodeXMLElementsLegacyCharset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>
<Set><Article><Title>Caf` + "\xe9" + ` study</Title><Author>Dubois</Author></Article></Set>`

	items, err := DecodeXMLElements[testArticle](context.Background(), strings.NewReader(doc), "Article")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Café study", items[0].Title)
}

func TestDecodeXMLElementsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DecodeXMLElements[testArticle](ctx, strings.NewReader("<Set></Set>"), "Article")
	require.Error(t, err)
}
