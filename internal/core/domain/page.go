package domain

import "strings"

// PageUnit is one OCR page of a protocol.
type PageUnit struct {
	// Number is the page number taken from the page-start marker.
	Number int

	// Raw is the page exactly as it appeared in the input, with its
	// page-start marker still attached.
	Raw string

	// Text is the page content with start and end markers removed.
	Text string
}

// Chunk is a contiguous run of pages sent to the model in one call.
type Chunk struct {
	// Index is the zero-based position of the chunk in the document.
	Index int

	// Pages are the pages of the chunk in document order.
	Pages []PageUnit
}

// FirstPage returns the number of the first page, or 0 for an empty chunk.
func (c Chunk) FirstPage() int {
	if len(c.Pages) == 0 {
		return 0
	}
	return c.Pages[0].Number
}

// LastPage returns the number of the last page, or 0 for an empty chunk.
func (c Chunk) LastPage() int {
	if len(c.Pages) == 0 {
		return 0
	}
	return c.Pages[len(c.Pages)-1].Number
}

// Text joins the marker-free text of all pages.
func (c Chunk) Text() string {
	var b strings.Builder
	for _, p := range c.Pages {
		b.WriteString(p.Text)
	}
	return b.String()
}

// ModelText is the text sent to the model. A single page goes without
// markers; a longer chunk keeps its page-start markers so entries can be
// attributed to the page they appear on.
func (c Chunk) ModelText() string {
	if len(c.Pages) <= 1 {
		return c.Text()
	}
	var b strings.Builder
	for _, p := range c.Pages {
		b.WriteString(p.Raw)
	}
	return b.String()
}

// PageNumbers lists the page numbers covered by the chunk.
func (c Chunk) PageNumbers() []int {
	nums := make([]int, len(c.Pages))
	for i, p := range c.Pages {
		nums[i] = p.Number
	}
	return nums
}
