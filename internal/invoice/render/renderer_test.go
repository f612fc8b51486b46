package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderNotice(t *testing.T) {
	r := NewRenderer()
	input := NoticeInput{
		CustomerName: "Oksana <script>",
		Reference:    "INV-20240301-000042",
		Description:  "Monthly fee for Fiber 500 - 2024-03-01",
		Amount:       30000,
		Balance:      1000,
		DueDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	html, err := r.RenderHTML(input)
	require.NoError(t, err)
	assert.Contains(t, html, "300.00 UAH")
	assert.Contains(t, html, "2024-03-01")
	assert.Contains(t, html, "10.00 UAH")
	assert.NotContains(t, html, "<script>")

	text, err := r.RenderText(input)
	require.NoError(t, err)
	assert.Equal(t, "INV-20240301-000042: 300.00 UAH due 2024-03-01. Monthly fee for Fiber 500 - 2024-03-01", text)
}
