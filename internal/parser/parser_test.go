package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "strips tags",
			html: `<div><b>Hello</b> <a href="https://x">world</a></div>`,
			want: "Hello world",
		},
		{
			name: "drops head style and script",
			html: `<html><head><title>T</title></head><body><style>p{color:red}</style>` +
				`<script>alert(1)</script>Body</body></html>`,
			want: "Body",
		},
		{
			name: "line breaks",
			html: `one<br>two<br/>three`,
			want: "one\ntwo\nthree",
		},
		{
			name: "paragraphs and blank line collapse",
			html: "<p>first</p>\n\n\n<p>second</p>\n \n \n<div>third</div>",
			want: "first\n\nsecond\n\nthird",
		},
		{
			name: "nbsp spacer paragraphs collapse",
			html: "<p>Hello</p><p>&nbsp;</p><p>&nbsp;</p><p>World</p>",
			want: "Hello\n\nWorld",
		},
		{
			name: "entities decoded",
			html: `<p>Tom &amp; Jerry</p>`,
			want: "Tom & Jerry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTMLToText(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "\n\n\n")
		})
	}
}
