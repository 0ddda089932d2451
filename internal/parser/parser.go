// Package parser defines the capability contract between the board core
// and remote-protocol adapters. Concrete protocol implementations live
// outside this module; the core depends only on this surface.
package parser

import (
	"github.com/zethon/Owl-sub001/internal/domain"
	"github.com/zethon/Owl-sub001/internal/errors"
)

type Credentials struct {
	Username string
	Password string
}

// LoginResult carries the raw protocol response. Params is a
// protocol-specific key/value bag forwarded to observers untouched;
// callers must tolerate either Success or a structured failure reason.
type LoginResult struct {
	Success bool
	Error   string
	Params  map[string]string
}

// RequestOptions tune a single thread- or post-list request.
type RequestOptions struct {
	Page    int
	PerPage int
}

// PostViewOption selects which page of a thread a post request lands on.
type PostViewOption int

const (
	// ViewFirstUnread lands on the page holding the first unread post.
	ViewFirstUnread PostViewOption = iota
	ViewFirstPost
	ViewLastPost
)

// Listener receives the results of asynchronous parser operations.
// Async requests are fire-and-forget: the call returns immediately and
// the outcome arrives here later. Errors are reported through
// RequestFailed, never returned across the async boundary. There is no
// cancellation; a result nobody wants anymore is simply ignored.
type Listener interface {
	LoginCompleted(result LoginResult)
	ThreadListRetrieved(forum *domain.Forum, threads []*domain.Thread)
	PostListRetrieved(thread *domain.Thread, posts []*domain.Post)
	ThreadSubmitted(thread *domain.Thread)
	PostSubmitted(post *domain.Post)
	ForumMarkedRead(forum *domain.Forum)
	RequestFailed(err *errors.WebError)
}

// Parser is the pluggable protocol adapter. A parser is owned by at
// most one board at a time; Bind replaces the listener wholesale and
// Unbind must leave no way for a stale owner to receive callbacks.
type Parser interface {
	// Name is the protocol identifier, e.g. "tapatalk4x".
	Name() string

	// Clone returns an unbound copy configured for the same endpoint.
	Clone() Parser

	Bind(l Listener)
	Unbind()

	// Login authenticates asynchronously; the outcome arrives via
	// Listener.LoginCompleted.
	Login(creds Credentials)

	// Synchronous calls, used only while crawling board structure.
	GetRootForumId() (string, error)
	GetForumList(parentId string) ([]*domain.Forum, error)
	GetUnreadForums() ([]*domain.Forum, error)

	// Asynchronous content operations.
	RequestThreadList(forum *domain.Forum, options RequestOptions)
	RequestPosts(thread *domain.Thread, view PostViewOption, options RequestOptions)
	SubmitNewThread(thread *domain.Thread)
	SubmitNewPost(post *domain.Post)
	MarkForumRead(forum *domain.Forum)
}
