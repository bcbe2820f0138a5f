package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureHTML = `
<html><body>
  <div class="card" data-id="1">
    <h2>First <em>Product</em></h2>
    <img data-src="/img/1.jpg">
  </div>
  <div class="card" data-id="2">
    <h2>Second Product</h2>
  </div>
</body></html>`

func TestDocumentQuerySelectorAll(t *testing.T) {
	doc, err := NewDocument(fixtureHTML)
	require.NoError(t, err)

	els, err := doc.QuerySelectorAll(".card")
	require.NoError(t, err)
	assert.Len(t, els, 2)

	els, err = doc.QuerySelectorAll(".missing")
	require.NoError(t, err)
	assert.Empty(t, els)
}

func TestDocumentQuerySelectorNoMatch(t *testing.T) {
	doc, err := NewDocument(fixtureHTML)
	require.NoError(t, err)

	el, err := doc.QuerySelector(".missing")
	require.NoError(t, err)
	assert.Nil(t, el)
}

func TestElementTextAndAttribute(t *testing.T) {
	doc, err := NewDocument(fixtureHTML)
	require.NoError(t, err)

	card, err := doc.QuerySelector("[data-id='1']")
	require.NoError(t, err)
	require.NotNil(t, card)

	h2, err := card.QuerySelector("h2")
	require.NoError(t, err)
	require.NotNil(t, h2)

	text, err := h2.Text()
	require.NoError(t, err)
	assert.Equal(t, "First Product", text)

	img, err := card.QuerySelector("img")
	require.NoError(t, err)
	require.NotNil(t, img)

	src, err := img.Attribute("data-src")
	require.NoError(t, err)
	assert.Equal(t, "/img/1.jpg", src)

	missing, err := img.Attribute("alt")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestInvalidSelectorIsErrorNotPanic(t *testing.T) {
	doc, err := NewDocument(fixtureHTML)
	require.NoError(t, err)

	_, err = doc.QuerySelectorAll("div[[[")
	assert.Error(t, err)

	_, err = doc.QuerySelector("div[[[")
	assert.Error(t, err)
}

func TestDocumentEvaluateUnsupported(t *testing.T) {
	doc, err := NewDocument(fixtureHTML)
	require.NoError(t, err)

	_, err = doc.Evaluate("() => 1")
	assert.ErrorIs(t, err, ErrEvaluateUnsupported)
}
