package site

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountAuthorBios(t *testing.T) {
	tests := map[string]struct {
		html string
		want int
	}{
		"none":            {`<html><body><p>hi</p></body></html>`, 0},
		"one":             {`<aside class="author-bio"><p class="author-bio__name">A</p></aside>`, 1},
		"two":             {`<aside class="author-bio"></aside><div class="x author-bio y"></div>`, 2},
		"modifier only":   {`<p class="author-bio__name">A</p>`, 0},
		"text is ignored": {`<p>author-bio</p>`, 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := CountAuthorBios(strings.NewReader(tt.html))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
