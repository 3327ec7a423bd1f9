package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Noise Abatement Ordinance</title></head>
<body>
<nav>Home | Ordinances | Contact</nav>
<article>
<h1>Noise Abatement Ordinance</h1>
<p>Between 22:00 and 06:00 no construction machinery may be operated within
residential zones. Exemptions require a written permit from the municipal
environment office and must be displayed on site.</p>
<p>Violations are subject to an administrative fine of up to 10,000 EUR as
set out in section 12 of the municipal code.</p>
</article>
<footer>Copyright Municipality</footer>
</body>
</html>`

func TestHTMLExtractor_Extract(t *testing.T) {
	e := NewHTMLExtractor()

	content, err := e.Extract([]byte(samplePage), "https://city.example.org/ordinances/noise")
	require.NoError(t, err)

	assert.Equal(t, "Noise Abatement Ordinance", content.Title)
	assert.Contains(t, content.Markdown, "construction machinery")
	assert.Contains(t, content.Text, "administrative fine")
	assert.NotContains(t, content.Markdown, "Copyright Municipality")
}

func TestHTMLExtractor_InvalidURL(t *testing.T) {
	e := NewHTMLExtractor()

	_, err := e.Extract([]byte(samplePage), "://not-a-url")
	assert.Error(t, err)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", normalizeText("  a\n\tb   c\n"))
}
