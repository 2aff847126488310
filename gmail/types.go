package gmail

import "time"

// Summary is the listing view of a message.
type Summary struct {
	ID       string
	From     string
	To       string
	Subject  string
	Snippet  string
	Received time.Time
}

// Part is one node of a message's MIME tree with its body already decoded.
type Part struct {
	MimeType string
	Data     []byte
	Parts    []*Part
}

// TextPart is a textual leaf found in a Part tree.
type TextPart struct {
	Text     string
	MimeType string
}

const (
	MimeTextPlain = "text/plain"
	MimeTextHTML  = "text/html"
)
