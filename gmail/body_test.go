package gmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func leaf(mimeType, data string) *Part {
	return &Part{MimeType: mimeType, Data: []byte(data)}
}

func multipart(parts ...*Part) *Part {
	return &Part{MimeType: "multipart/mixed", Parts: parts}
}

func TestFindText(t *testing.T) {
	tests := []struct {
		name   string
		root   *Part
		want   TextPart
		wantOK bool
	}{
		{
			name:   "single plain body",
			root:   leaf("text/plain", "hello"),
			want:   TextPart{Text: "hello", MimeType: MimeTextPlain},
			wantOK: true,
		},
		{
			name:   "plain preferred over html",
			root:   multipart(leaf("text/html", "<b>hi</b>"), leaf("text/plain", "hi")),
			want:   TextPart{Text: "hi", MimeType: MimeTextPlain},
			wantOK: true,
		},
		{
			name: "nested plain beats html at top level",
			root: multipart(
				leaf("text/html", "<p>top</p>"),
				multipart(leaf("image/png", "\x89PNG"), leaf("text/plain; charset=UTF-8", "deep")),
			),
			want:   TextPart{Text: "deep", MimeType: MimeTextPlain},
			wantOK: true,
		},
		{
			name: "nested html does not shadow later plain",
			root: multipart(
				multipart(leaf("text/html", "<p>alt</p>")),
				multipart(leaf("text/plain", "later")),
			),
			want:   TextPart{Text: "later", MimeType: MimeTextPlain},
			wantOK: true,
		},
		{
			name:   "first plain leaf in depth first order",
			root:   multipart(multipart(leaf("text/plain", "a")), leaf("text/plain", "b")),
			want:   TextPart{Text: "a", MimeType: MimeTextPlain},
			wantOK: true,
		},
		{
			name:   "html fallback",
			root:   multipart(leaf("image/jpeg", "x"), multipart(leaf("TEXT/HTML", "<p>x</p>"))),
			want:   TextPart{Text: "<p>x</p>", MimeType: MimeTextHTML},
			wantOK: true,
		},
		{
			name:   "empty plain leaf skipped",
			root:   multipart(leaf("text/plain", ""), leaf("text/html", "<i>y</i>")),
			want:   TextPart{Text: "<i>y</i>", MimeType: MimeTextHTML},
			wantOK: true,
		},
		{
			name:   "image only",
			root:   multipart(leaf("image/png", "x")),
			wantOK: false,
		},
		{
			name:   "nil root",
			root:   nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindText(tt.root)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
