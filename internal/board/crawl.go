package board

import (
	"fmt"
	"time"

	"github.com/zethon/Owl-sub001/internal/domain"
	"github.com/zethon/Owl-sub001/internal/errors"
	"github.com/zethon/Owl-sub001/internal/logger"
	"github.com/zethon/Owl-sub001/internal/metrics"
	"github.com/zethon/Owl-sub001/internal/parser"
)

// CrawlRoot rebuilds the board's forum tree from the server. The
// forumId index is cleared first and rebuilt from the fresh tree, so
// the index can never carry entries from a previous layout.
//
// In lenient mode a failing branch is skipped with a warning and the
// rest of the crawl continues. In strict mode any failure aborts the
// whole crawl and the tree is reset to empty.
func (b *Board) CrawlRoot(strict bool) error {
	p := b.parserRef()
	if p == nil {
		return &errors.InvalidStateError{Message: fmt.Sprintf("board %q has no parser bound", b.name)}
	}

	b.hashMu.Lock()
	b.forumHash = make(map[string]*domain.Forum)
	b.hashMu.Unlock()

	root, err := b.crawlTree(p, strict)
	if err != nil {
		empty := domain.NewRootForum()
		b.mu.Lock()
		b.root = empty
		b.mu.Unlock()
		return err
	}

	b.mu.Lock()
	b.root = root
	b.lastUpdate = time.Now()
	b.mu.Unlock()

	b.UpdateForumHash()

	b.eachObserver(func(o Observer) { o.OnForumListLoaded(b, root.Children) })
	return nil
}

// crawlTree fetches the remote structure into a detached tree without
// touching the board's live state.
func (b *Board) crawlTree(p parser.Parser, strict bool) (*domain.Forum, error) {
	rootId, err := p.GetRootForumId()
	if err != nil {
		return nil, fmt.Errorf("fetching root forum id: %w", err)
	}

	// Top-level failure aborts the crawl in either mode.
	children, err := p.GetForumList(rootId)
	if err != nil {
		metrics.CrawlErrorsTotal.WithLabelValues(b.name).Inc()
		return nil, fmt.Errorf("fetching root forum list: %w", err)
	}

	root := domain.NewRootForum()

	// dup guards against a server reporting the same forum under more
	// than one parent; each forum id is crawled at most once.
	dup := map[string]struct{}{rootId: {}}
	for _, child := range children {
		if err := b.crawlSubForum(p, root, child, dup, strict); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (b *Board) crawlSubForum(p parser.Parser, parent, child *domain.Forum, dup map[string]struct{}, strict bool) error {
	if _, seen := dup[child.Id]; seen {
		logger.Log.Warn("server reported forum under multiple parents, skipping",
			"board", b.name, "forum", child.Id, "parent", parent.Id)
		return nil
	}
	// LINK nodes go on the guard list too, even though they are never
	// recursed into, so a link cannot later look like an uncrawled
	// branch.
	dup[child.Id] = struct{}{}

	if err := parent.AddChild(child); err != nil {
		return err
	}
	if child.IsLink() {
		return nil
	}

	grandchildren, err := p.GetForumList(child.Id)
	if err != nil {
		metrics.CrawlErrorsTotal.WithLabelValues(b.name).Inc()
		if strict {
			return fmt.Errorf("crawling forum %q: %w", child.Id, err)
		}
		logger.Log.Warn("skipping forum branch", "board", b.name, "forum", child.Id, "error", err)
		return nil
	}
	for _, g := range grandchildren {
		if err := b.crawlSubForum(p, child, g, dup, strict); err != nil {
			return err
		}
	}
	return nil
}

// UpdateForumHash walks the live tree and indexes every node not yet
// present. The walk is idempotent and never replaces entries, which is
// why CrawlRoot empties the index before installing a fresh tree. All
// non-root node types are indexed, categories and links included, so
// lookup by id is uniform across the tree.
func (b *Board) UpdateForumHash() {
	b.mu.Lock()
	root := b.root
	b.mu.Unlock()
	if root == nil {
		return
	}

	b.hashMu.Lock()
	defer b.hashMu.Unlock()
	root.Walk(func(f *domain.Forum) {
		if f.IsRoot() {
			return
		}
		if _, ok := b.forumHash[f.Id]; !ok {
			b.forumHash[f.Id] = f
		}
	})
}

// ForumById is the sanctioned O(1) lookup path; walking the tree to
// find a forum by id anywhere else is a bug.
func (b *Board) ForumById(id string) (*domain.Forum, bool) {
	b.hashMu.Lock()
	defer b.hashMu.Unlock()
	f, ok := b.forumHash[id]
	return f, ok
}

// ForumHash returns a copy of the forumId index.
func (b *Board) ForumHash() map[string]*domain.Forum {
	b.hashMu.Lock()
	defer b.hashMu.Unlock()
	out := make(map[string]*domain.Forum, len(b.forumHash))
	for k, v := range b.forumHash {
		out[k] = v
	}
	return out
}

// UpdateUnread re-syncs the forum index and fetches the flat list of
// forums with unread content, flagging matching tree nodes and handing
// the list to observers. Failures here are background noise: they are
// logged and never propagated.
func (b *Board) UpdateUnread() {
	p := b.parserRef()
	if p == nil {
		return
	}

	b.UpdateForumHash()

	unread, err := p.GetUnreadForums()
	if err != nil {
		logger.Log.Warn("unread refresh failed", "board", b.name, "error", err)
		return
	}

	for _, f := range unread {
		if node, ok := b.ForumById(f.Id); ok {
			node.HasUnread = true
		}
	}

	b.eachObserver(func(o Observer) { o.OnUnreadForums(b, unread) })
}

// CheckStructureUpdate re-fetches the remote structure into a detached
// tree and compares it against the live one. On drift, observers are
// told the board needs full removal and re-add; no incremental merge is
// attempted. The check runs at most once per structureCheckInterval.
func (b *Board) CheckStructureUpdate() (bool, error) {
	b.mu.Lock()
	last := b.lastUpdate
	b.mu.Unlock()
	if time.Since(last) < structureCheckInterval {
		return false, nil
	}

	p := b.parserRef()
	if p == nil {
		return false, &errors.InvalidStateError{Message: fmt.Sprintf("board %q has no parser bound", b.name)}
	}

	fresh, err := b.crawlTree(p, false)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	live := b.root
	b.lastUpdate = time.Now()
	b.mu.Unlock()

	if live.IsStructureEqual(fresh) {
		return false, nil
	}

	metrics.StructureChangesTotal.WithLabelValues(b.name).Inc()
	logger.Log.Info("forum structure drift detected", "board", b.name)
	b.eachObserver(func(o Observer) { o.OnStructureChanged(b) })
	return true, nil
}
