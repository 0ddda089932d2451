// Package parsertest provides an in-memory Parser double for exercising
// the board core without a remote forum. It is not a protocol
// implementation: results are fired synchronously from canned data so
// tests stay deterministic.
package parsertest

import (
	"fmt"
	"sync"

	"github.com/zethon/Owl-sub001/internal/domain"
	"github.com/zethon/Owl-sub001/internal/errors"
	"github.com/zethon/Owl-sub001/internal/parser"
)

// ForumSpec describes one node the stub will report as a child.
type ForumSpec struct {
	Id   string
	Name string
	Type domain.ForumType
}

type ThreadListRequest struct {
	Forum   *domain.Forum
	Options parser.RequestOptions
}

type PostsRequest struct {
	Thread  *domain.Thread
	View    parser.PostViewOption
	Options parser.RequestOptions
}

// StubParser implements parser.Parser from canned data. Zero value is
// usable; fields may be set before handing it to a board. Func fields
// override individual operations when set.
type StubParser struct {
	Protocol string
	Root     string
	// Graph maps a parent forum id to the children reported for it.
	// A forum id may appear under more than one parent to simulate a
	// malformed server hierarchy.
	Graph  map[string][]ForumSpec
	Unread []ForumSpec

	LoginFunc           func(creds parser.Credentials) parser.LoginResult
	GetForumListFunc    func(parentId string) ([]*domain.Forum, error)
	GetUnreadForumsFunc func() ([]*domain.Forum, error)

	mu                 sync.Mutex
	listener           parser.Listener
	ThreadListRequests []ThreadListRequest
	PostsRequests      []PostsRequest
	MarkedRead         []*domain.Forum
	SubmittedThreads   []*domain.Thread
	SubmittedPosts     []*domain.Post
	ForumListCalls     map[string]int
	unbinds            int
}

var _ parser.Parser = (*StubParser)(nil)

func (s *StubParser) Name() string {
	if s.Protocol == "" {
		return "stub"
	}
	return s.Protocol
}

func (s *StubParser) Clone() parser.Parser {
	return &StubParser{
		Protocol: s.Protocol,
		Root:     s.Root,
		Graph:    s.Graph,
		Unread:   s.Unread,
	}
}

func (s *StubParser) Bind(l parser.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

func (s *StubParser) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = nil
	s.unbinds++
}

// Listener returns the currently bound listener, or nil after Unbind.
func (s *StubParser) Listener() parser.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener
}

// Unbinds reports how many times Unbind has been called.
func (s *StubParser) Unbinds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unbinds
}

func (s *StubParser) Login(creds parser.Credentials) {
	result := parser.LoginResult{Success: true, Params: map[string]string{"username": creds.Username}}
	if s.LoginFunc != nil {
		result = s.LoginFunc(creds)
	}
	if l := s.Listener(); l != nil {
		l.LoginCompleted(result)
	}
}

func (s *StubParser) GetRootForumId() (string, error) {
	if s.Root == "" {
		return domain.RootId, nil
	}
	return s.Root, nil
}

func (s *StubParser) GetForumList(parentId string) ([]*domain.Forum, error) {
	s.mu.Lock()
	if s.ForumListCalls == nil {
		s.ForumListCalls = make(map[string]int)
	}
	s.ForumListCalls[parentId]++
	s.mu.Unlock()

	if s.GetForumListFunc != nil {
		return s.GetForumListFunc(parentId)
	}
	specs, ok := s.Graph[parentId]
	if !ok {
		return nil, nil
	}
	return buildForums(specs), nil
}

func (s *StubParser) GetUnreadForums() ([]*domain.Forum, error) {
	if s.GetUnreadForumsFunc != nil {
		return s.GetUnreadForumsFunc()
	}
	return buildForums(s.Unread), nil
}

func (s *StubParser) RequestThreadList(forum *domain.Forum, options parser.RequestOptions) {
	s.mu.Lock()
	s.ThreadListRequests = append(s.ThreadListRequests, ThreadListRequest{forum, options})
	s.mu.Unlock()
}

func (s *StubParser) RequestPosts(thread *domain.Thread, view parser.PostViewOption, options parser.RequestOptions) {
	s.mu.Lock()
	s.PostsRequests = append(s.PostsRequests, PostsRequest{thread, view, options})
	s.mu.Unlock()
}

func (s *StubParser) SubmitNewThread(thread *domain.Thread) {
	s.mu.Lock()
	s.SubmittedThreads = append(s.SubmittedThreads, thread)
	s.mu.Unlock()
	if l := s.Listener(); l != nil {
		l.ThreadSubmitted(thread)
	}
}

func (s *StubParser) SubmitNewPost(post *domain.Post) {
	s.mu.Lock()
	s.SubmittedPosts = append(s.SubmittedPosts, post)
	s.mu.Unlock()
	if l := s.Listener(); l != nil {
		l.PostSubmitted(post)
	}
}

func (s *StubParser) MarkForumRead(forum *domain.Forum) {
	s.mu.Lock()
	s.MarkedRead = append(s.MarkedRead, forum)
	s.mu.Unlock()
	if l := s.Listener(); l != nil {
		l.ForumMarkedRead(forum)
	}
}

// FailRequest reports a request error to the bound listener, as a real
// parser would on a network failure.
func (s *StubParser) FailRequest(message, details string) {
	if l := s.Listener(); l != nil {
		l.RequestFailed(&errors.WebError{Message: message, Details: details})
	}
}

func buildForums(specs []ForumSpec) []*domain.Forum {
	forums := make([]*domain.Forum, 0, len(specs))
	for i, spec := range specs {
		ft := spec.Type
		if ft == "" {
			ft = domain.ForumTypeForum
		}
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("forum-%s", spec.Id)
		}
		f := domain.NewForum(spec.Id, name, ft)
		f.DisplayOrder = i
		forums = append(forums, f)
	}
	return forums
}
