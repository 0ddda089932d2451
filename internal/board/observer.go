package board

import (
	"github.com/zethon/Owl-sub001/internal/domain"
	"github.com/zethon/Owl-sub001/internal/errors"
	"github.com/zethon/Owl-sub001/internal/parser"
)

// Observer receives a board's typed events. Observers hold only
// non-owning references to the board and its items; remediation of
// failures (retry UI, credential re-entry) is the observer's concern,
// never the core's.
type Observer interface {
	// OnLoginCompleted fires after a login attempt with the raw
	// protocol response, success or structured failure alike.
	OnLoginCompleted(b *Board, result parser.LoginResult)

	// OnForumListLoaded fires after a crawl replaced the forum tree.
	OnForumListLoaded(b *Board, forums []*domain.Forum)

	// OnThreadListLoaded and OnPostListLoaded carry a stale flag:
	// a result for a forum or thread the user has since navigated
	// away from is still delivered, just marked non-matching.
	OnThreadListLoaded(b *Board, forum *domain.Forum, threads []*domain.Thread, stale bool)
	OnPostListLoaded(b *Board, thread *domain.Thread, posts []*domain.Post, stale bool)

	OnUnreadForums(b *Board, forums []*domain.Forum)
	OnForumMarkedRead(b *Board, forum *domain.Forum)
	OnThreadSubmitted(b *Board, thread *domain.Thread)
	OnPostSubmitted(b *Board, post *domain.Post)

	// OnRequestError forwards the parser's error payload verbatim.
	OnRequestError(b *Board, err *errors.WebError)

	// OnStructureChanged signals drift between the local tree and the
	// server's; the board needs full removal and re-add to recover.
	OnStructureChanged(b *Board)
}

// NopObserver is a no-op Observer for embedding, so collaborators only
// implement the events they care about.
type NopObserver struct{}

func (NopObserver) OnLoginCompleted(*Board, parser.LoginResult) {}
func (NopObserver) OnForumListLoaded(*Board, []*domain.Forum)   {}
func (NopObserver) OnThreadListLoaded(*Board, *domain.Forum, []*domain.Thread, bool) {
}
func (NopObserver) OnPostListLoaded(*Board, *domain.Thread, []*domain.Post, bool) {}
func (NopObserver) OnUnreadForums(*Board, []*domain.Forum)                        {}
func (NopObserver) OnForumMarkedRead(*Board, *domain.Forum)                       {}
func (NopObserver) OnThreadSubmitted(*Board, *domain.Thread)                      {}
func (NopObserver) OnPostSubmitted(*Board, *domain.Post)                          {}
func (NopObserver) OnRequestError(*Board, *errors.WebError)                       {}
func (NopObserver) OnStructureChanged(*Board)                                     {}
