package gmail

import "strings"

// FindText searches the tree rooted at p for a textual body. A text/plain
// leaf anywhere in the tree wins over any text/html leaf; within one pass the
// first leaf in depth-first order is returned. Leaves without data are
// ignored.
func FindText(p *Part) (TextPart, bool) {
	if leaf := firstLeaf(p, MimeTextPlain); leaf != nil {
		return TextPart{Text: string(leaf.Data), MimeType: MimeTextPlain}, true
	}
	if leaf := firstLeaf(p, MimeTextHTML); leaf != nil {
		return TextPart{Text: string(leaf.Data), MimeType: MimeTextHTML}, true
	}
	return TextPart{}, false
}

func firstLeaf(p *Part, mimeType string) *Part {
	if p == nil {
		return nil
	}
	if len(p.Parts) == 0 {
		if sameType(p.MimeType, mimeType) && len(p.Data) > 0 {
			return p
		}
		return nil
	}
	for _, child := range p.Parts {
		if leaf := firstLeaf(child, mimeType); leaf != nil {
			return leaf
		}
	}
	return nil
}

// sameType compares media types ignoring case and parameters.
func sameType(got, want string) bool {
	if i := strings.IndexByte(got, ';'); i >= 0 {
		got = got[:i]
	}
	return strings.EqualFold(strings.TrimSpace(got), want)
}
