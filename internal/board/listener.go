package board

import (
	"github.com/zethon/Owl-sub001/internal/domain"
	"github.com/zethon/Owl-sub001/internal/errors"
	"github.com/zethon/Owl-sub001/internal/logger"
	"github.com/zethon/Owl-sub001/internal/parser"
	"github.com/zethon/Owl-sub001/internal/sanitize"
)

// boardListener adapts parser callbacks onto the board without exposing
// the parser.Listener surface as board API. Exactly one listener exists
// per bound parser; SetParser tears it down before attaching another.
type boardListener struct {
	b *Board
}

var _ parser.Listener = (*boardListener)(nil)

func (l *boardListener) LoginCompleted(result parser.LoginResult) {
	b := l.b
	if result.Success {
		b.setStatus(StatusOnline)
	} else {
		b.setStatus(StatusOffline)
		logger.Log.Warn("login failed", "board", b.name, "error", result.Error)
	}
	b.eachObserver(func(o Observer) { o.OnLoginCompleted(b, result) })
}

func (l *boardListener) ThreadListRetrieved(forum *domain.Forum, threads []*domain.Thread) {
	b := l.b

	sanitize.Threads(threads)
	for _, t := range threads {
		t.Board = b
	}

	// A result for a forum the user has since navigated away from is
	// still delivered, just flagged; in-flight requests cannot be
	// canceled so late arrivals are expected.
	b.mu.Lock()
	current := b.currentForum
	b.mu.Unlock()
	stale := current == nil || current.Id != forum.Id

	if stale {
		logger.Log.Warn("thread list arrived for non-current forum",
			"board", b.name, "forum", forum.Id)
	} else {
		if err := current.SetThreadList(threads); err != nil {
			logger.Log.Warn("could not attach thread list", "board", b.name, "forum", forum.Id, "error", err)
		}
		current.PageNumber = forum.PageNumber
		current.PageCount = forum.PageCount
	}

	b.eachObserver(func(o Observer) { o.OnThreadListLoaded(b, forum, threads, stale) })
}

func (l *boardListener) PostListRetrieved(thread *domain.Thread, posts []*domain.Post) {
	b := l.b

	sanitize.Posts(posts)
	// The parser has no concept of a board; the back-pointer is
	// assigned here.
	for _, p := range posts {
		p.Board = b
	}

	b.mu.Lock()
	current := b.currentThread
	b.mu.Unlock()
	stale := current == nil || current.Id != thread.Id

	if stale {
		logger.Log.Warn("post list arrived for non-current thread",
			"board", b.name, "thread", thread.Id)
	} else {
		current.PageNumber = thread.PageNumber
		current.PageCount = thread.PageCount
		current.SetPosts(posts)
	}

	b.eachObserver(func(o Observer) { o.OnPostListLoaded(b, thread, posts, stale) })
}

func (l *boardListener) ThreadSubmitted(thread *domain.Thread) {
	b := l.b
	thread.Board = b
	b.eachObserver(func(o Observer) { o.OnThreadSubmitted(b, thread) })
}

func (l *boardListener) PostSubmitted(post *domain.Post) {
	b := l.b
	post.Board = b
	b.eachObserver(func(o Observer) { o.OnPostSubmitted(b, post) })
}

func (l *boardListener) ForumMarkedRead(forum *domain.Forum) {
	b := l.b
	if node, ok := b.ForumById(forum.Id); ok {
		node.HasUnread = false
		for _, t := range node.Threads() {
			t.HasUnread = false
		}
	}
	b.eachObserver(func(o Observer) { o.OnForumMarkedRead(b, forum) })
}

func (l *boardListener) RequestFailed(err *errors.WebError) {
	b := l.b
	// Forwarded verbatim: remediation is a UI concern, the operation
	// is simply failed-and-dropped here.
	logger.Log.Warn("parser request failed", "board", b.name, "error", err.Message, "details", err.Details)
	b.eachObserver(func(o Observer) { o.OnRequestError(b, err) })
}
