package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesRender(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	data := TemplateData{
		Name:  "Dana",
		Route: "Central Station - Airport",
		Price: 450,
		Link:  "http://localhost:5173/requests/abc",
	}

	accepted, err := tm.GenerateOfferAcceptedEmailHTML(data)
	require.NoError(t, err)
	assert.Contains(t, accepted, "Good news, Dana!")
	assert.Contains(t, accepted, "$450.00")
	assert.Contains(t, accepted, "Central Station - Airport")
	assert.Contains(t, accepted, data.Link)

	paid, err := tm.GeneratePaymentConfirmedEmailHTML(data)
	require.NoError(t, err)
	assert.Contains(t, paid, "Payment received, Dana")
	assert.Contains(t, paid, "$450.00")
	assert.Contains(t, paid, data.Link)
}

func TestTemplatesEscapeHTML(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	out, err := tm.GenerateOfferAcceptedEmailHTML(TemplateData{Name: "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}
