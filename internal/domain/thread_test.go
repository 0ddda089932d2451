package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPosts(t *testing.T) {
	th := NewThread("t1", "title")
	th.PerPage = 10
	th.PageNumber = 2
	th.PageCount = 3
	th.HasUnread = true

	posts := []*Post{
		NewPost("p1", "alice", "first"),
		NewPost("p2", "bob", "second"),
	}
	th.SetPosts(posts)

	require.Len(t, th.Posts(), 2)
	assert.Equal(t, 11, posts[0].Index, "index continues across pages")
	assert.Equal(t, 12, posts[1].Index)
	assert.Same(t, th, posts[0].Thread)
	assert.Same(t, posts[0], th.FirstUnread, "unread thread resumes at first post of the landing page")
	assert.Same(t, posts[1], th.LastPost)

	// replacement disconnects the previous page
	next := []*Post{NewPost("p3", "carol", "third")}
	th.SetPosts(next)
	assert.Nil(t, posts[0].Thread)
	require.Len(t, th.Posts(), 1)
}

func TestSetPostsNoUnread(t *testing.T) {
	th := NewThread("t1", "title")
	th.PerPage = 10
	th.SetPosts([]*Post{NewPost("p1", "alice", "hi")})
	assert.Nil(t, th.FirstUnread)
}

func TestMarkViewed(t *testing.T) {
	th := NewThread("t1", "title")
	th.PageCount = 3
	th.HasUnread = true

	th.MarkViewed(2)
	assert.True(t, th.HasUnread, "middle page does not clear unread")

	th.MarkViewed(3)
	assert.False(t, th.HasUnread, "viewing the last page marks the thread read locally")
	assert.Nil(t, th.FirstUnread)
}

func TestClearPosts(t *testing.T) {
	th := NewThread("t1", "title")
	p := NewPost("p1", "alice", "hi")
	th.SetPosts([]*Post{p})
	th.ClearPosts()
	assert.Nil(t, p.Thread)
	assert.Empty(t, th.Posts())
	assert.Nil(t, th.LastPost)
}
