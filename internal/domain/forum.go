package domain

import (
	"fmt"

	"github.com/zethon/Owl-sub001/internal/errors"
)

type ForumType string

const (
	ForumTypeForum    ForumType = "FORUM"
	ForumTypeCategory ForumType = "CATEGORY"
	ForumTypeLink     ForumType = "LINK"
)

// VarForumUrl holds the external target of a LINK forum.
const VarForumUrl = "link.url"

// Forum is one node of a board's hierarchy: a postable area (FORUM), a
// container (CATEGORY) or an external pointer (LINK). Child forums are
// owned and ordered; the thread list is transient, fetched on demand and
// cleared when the forum loses focus.
type Forum struct {
	Item

	Name      string
	ForumType ForumType

	PageNumber int
	PageCount  int
	PerPage    int
	HasUnread  bool

	Parent   *Forum
	Children []*Forum

	threads []*Thread
}

func NewForum(id, name string, forumType ForumType) *Forum {
	return &Forum{
		Item:       newItem(id),
		Name:       name,
		ForumType:  forumType,
		PageNumber: 1,
		PageCount:  1,
	}
}

// NewRootForum returns the synthetic root node. It carries no
// protocol id and is never sent to a parser.
func NewRootForum() *Forum {
	return NewForum(RootId, "", ForumTypeCategory)
}

func (f *Forum) IsRoot() bool {
	return f.Id == RootId && f.Parent == nil
}

func (f *Forum) IsCategory() bool {
	return f.ForumType == ForumTypeCategory
}

func (f *Forum) IsLink() bool {
	return f.ForumType == ForumTypeLink
}

// AddChild appends child and sets its parent back-reference. A child
// already owned by a different forum is rejected.
func (f *Forum) AddChild(child *Forum) error {
	if child.Parent != nil && child.Parent != f {
		return &errors.InvalidStateError{
			Message: fmt.Sprintf("forum %q already has parent %q", child.Id, child.Parent.Id),
		}
	}
	child.Parent = f
	f.Children = append(f.Children, child)
	return nil
}

// Threads returns the current transient thread list.
func (f *Forum) Threads() []*Thread {
	return f.threads
}

// SetThreadList replaces the thread list wholesale. There is no
// incremental merge: stale threads are explicitly disconnected so no
// dangling back-reference survives the swap.
func (f *Forum) SetThreadList(threads []*Thread) error {
	if f.IsCategory() {
		return &errors.InvalidStateError{
			Message: fmt.Sprintf("category %q cannot hold threads", f.Id),
		}
	}
	for _, old := range f.threads {
		old.disconnect()
	}
	f.threads = make([]*Thread, 0, len(threads))
	for _, t := range threads {
		t.Forum = f
		f.threads = append(f.threads, t)
	}
	return nil
}

// ClearThreads discards the transient thread list. Called when the UI
// navigates away from the forum; threads are never garbage-collected
// implicitly.
func (f *Forum) ClearThreads() {
	for _, t := range f.threads {
		t.disconnect()
	}
	f.threads = nil
}

// IsStructureEqual reports whether two trees have the same shape: every
// node's (id, forumType, ordered child ids) triple must match. Unread
// state, names and paging are deliberately ignored so content churn
// does not read as layout drift.
func (f *Forum) IsStructureEqual(other *Forum) bool {
	if other == nil {
		return false
	}
	if f.Id != other.Id || f.ForumType != other.ForumType {
		return false
	}
	if len(f.Children) != len(other.Children) {
		return false
	}
	for i, child := range f.Children {
		if !child.IsStructureEqual(other.Children[i]) {
			return false
		}
	}
	return true
}

// Walk visits f and every descendant depth-first in display order.
func (f *Forum) Walk(visit func(*Forum)) {
	visit(f)
	for _, child := range f.Children {
		child.Walk(visit)
	}
}
