// Package sanitize scrubs remote-origin markup before it is handed to
// observers. Forum servers are not trusted to return well-behaved HTML.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/zethon/Owl-sub001/internal/domain"
)

var policy = bluemonday.UGCPolicy()

// Text cleans one fragment of remote HTML, keeping the user-generated
// content subset (links, emphasis, lists) and dropping scripts, event
// handlers and embedded frames.
func Text(s string) string {
	return policy.Sanitize(s)
}

// Posts scrubs every post's text in place.
func Posts(posts []*domain.Post) {
	for _, p := range posts {
		p.Text = Text(p.Text)
	}
}

// Threads scrubs thread titles and preview text in place.
func Threads(threads []*domain.Thread) {
	for _, t := range threads {
		t.Title = Text(t.Title)
		t.PreviewText = Text(t.PreviewText)
	}
}
