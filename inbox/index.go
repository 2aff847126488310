package inbox

// Index maps the display indices of one listing (1..N) to message ids.
// Every listing gets a new generation; the holder replaces its Index
// wholesale and references minted for an older generation no longer resolve.
// A nil Index resolves nothing.
type Index struct {
	gen uint64
	ids []string
}

// Generation identifies the listing that produced the index.
func (x *Index) Generation() uint64 {
	if x == nil {
		return 0
	}
	return x.gen
}

// Resolve returns the message id shown under display index i of listing gen.
func (x *Index) Resolve(gen uint64, i int) (string, error) {
	if x == nil || gen != x.gen || i < 1 || i > len(x.ids) {
		return "", ErrStale
	}
	return x.ids[i-1], nil
}

// Len returns the number of entries.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.ids)
}
