package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty body",
			input:    "",
			expected: "",
		},
		{
			name:     "paragraphs",
			input:    `<div class="md"><p>Dem är bäst.</p><p>Jag håller med &amp; de andra.</p></div>`,
			expected: "Dem är bäst.\n\nJag håller med & de andra.",
		},
		{
			name:     "quotes and code are dropped",
			input:    `<div class="md"><blockquote><p>de sa</p></blockquote><p>Nej<br/>dem sa</p><pre><code>de dem</code></pre></div>`,
			expected: "Nej\ndem sa",
		},
	}
	for _, tt := range tests {
		actual, err := HTMLToText(strings.NewReader(tt.input))
		assert.NoError(t, err, tt.name)
		assert.Equal(t, tt.expected, actual, tt.name)
	}
}
