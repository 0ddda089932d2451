package domain

import "time"

// Thread is a transient, paged unit of conversation inside a forum. It
// is created fresh on every thread-list fetch and discarded when the UI
// navigates away; nothing about it is persisted locally.
type Thread struct {
	Item

	Title       string
	Author      string
	PreviewText string
	Sticky      bool
	Replies     int

	PageNumber int
	PageCount  int
	PerPage    int

	HasUnread   bool
	FirstUnread *Post
	LastPost    *Post

	Forum *Forum
	Board BoardHandle

	posts []*Post
}

func NewThread(id, title string) *Thread {
	return &Thread{
		Item:       newItem(id),
		Title:      title,
		PageNumber: 1,
		PageCount:  1,
	}
}

func (t *Thread) Posts() []*Post {
	return t.posts
}

// SetPosts replaces the post list wholesale, numbering each post by its
// position on the current page and wiring back-references. The first
// unread reference is recomputed from the thread's unread flag: when the
// thread has unread content the first post of the landing page is where
// the reader resumes.
func (t *Thread) SetPosts(posts []*Post) {
	for _, old := range t.posts {
		old.Thread = nil
	}
	t.posts = make([]*Post, 0, len(posts))
	t.FirstUnread = nil
	t.LastPost = nil
	for i, p := range posts {
		p.Thread = t
		p.Index = (t.PageNumber-1)*t.PerPage + i + 1
		t.posts = append(t.posts, p)
	}
	if len(t.posts) > 0 {
		t.LastPost = t.posts[len(t.posts)-1]
		if t.HasUnread {
			t.FirstUnread = t.posts[0]
		}
	}
}

// ClearPosts discards the transient post list.
func (t *Thread) ClearPosts() {
	for _, p := range t.posts {
		p.Thread = nil
	}
	t.posts = nil
	t.FirstUnread = nil
	t.LastPost = nil
}

// MarkViewed records that the given page has been displayed. Viewing
// the last page marks the thread locally read; this is an optimistic
// client-side heuristic, not a server acknowledgment.
func (t *Thread) MarkViewed(page int) {
	t.PageNumber = page
	if page >= t.PageCount {
		t.HasUnread = false
		t.FirstUnread = nil
	}
}

func (t *Thread) disconnect() {
	t.ClearPosts()
	t.Forum = nil
	t.Board = nil
}

// Post is one message inside a thread. The board pointer is assigned
// lazily by the owning board, never by a parser.
type Post struct {
	Item

	Author    string
	Text      string
	Timestamp time.Time
	IconUrl   string
	Index     int

	Thread *Thread
	Board  BoardHandle
}

func NewPost(id, author, text string) *Post {
	return &Post{Item: newItem(id), Author: author, Text: text}
}
