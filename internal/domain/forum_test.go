package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/zethon/Owl-sub001/internal/errors"
)

func buildTree(t *testing.T) *Forum {
	t.Helper()
	root := NewRootForum()
	cat := NewForum("1", "General", ForumTypeCategory)
	require.NoError(t, root.AddChild(cat))
	require.NoError(t, cat.AddChild(NewForum("10", "Announcements", ForumTypeForum)))
	require.NoError(t, cat.AddChild(NewForum("11", "Off-Topic", ForumTypeForum)))
	return root
}

func TestAddChild(t *testing.T) {
	t.Run("sets parent back-reference", func(t *testing.T) {
		parent := NewForum("1", "parent", ForumTypeCategory)
		child := NewForum("2", "child", ForumTypeForum)
		require.NoError(t, parent.AddChild(child))
		assert.Same(t, parent, child.Parent)
		require.Len(t, parent.Children, 1)
		assert.Same(t, child, parent.Children[0])
	})

	t.Run("rejects child owned by another forum", func(t *testing.T) {
		a := NewForum("1", "a", ForumTypeCategory)
		b := NewForum("2", "b", ForumTypeCategory)
		child := NewForum("3", "child", ForumTypeForum)
		require.NoError(t, a.AddChild(child))
		err := b.AddChild(child)
		require.Error(t, err)
		assert.True(t, internal_errors.Is[*internal_errors.InvalidStateError](err))
	})

	t.Run("re-adding under same parent is allowed", func(t *testing.T) {
		parent := NewForum("1", "parent", ForumTypeCategory)
		child := NewForum("2", "child", ForumTypeForum)
		require.NoError(t, parent.AddChild(child))
		require.NoError(t, parent.AddChild(child))
	})
}

func TestIsRoot(t *testing.T) {
	root := NewRootForum()
	assert.True(t, root.IsRoot())

	child := NewForum(RootId, "fake", ForumTypeForum)
	parent := NewForum("1", "parent", ForumTypeCategory)
	require.NoError(t, parent.AddChild(child))
	assert.False(t, child.IsRoot(), "a parented node is never root even with the sentinel id")
	assert.False(t, parent.IsRoot())
}

func TestIsStructureEqual(t *testing.T) {
	t.Run("identical trees compare equal", func(t *testing.T) {
		assert.True(t, buildTree(t).IsStructureEqual(buildTree(t)))
	})

	t.Run("different forum type on one node compares unequal", func(t *testing.T) {
		a := buildTree(t)
		b := buildTree(t)
		b.Children[0].Children[1].ForumType = ForumTypeLink
		assert.False(t, a.IsStructureEqual(b))
	})

	t.Run("different child order compares unequal", func(t *testing.T) {
		a := buildTree(t)
		b := buildTree(t)
		cat := b.Children[0]
		cat.Children[0], cat.Children[1] = cat.Children[1], cat.Children[0]
		assert.False(t, a.IsStructureEqual(b))
	})

	t.Run("missing node compares unequal", func(t *testing.T) {
		a := buildTree(t)
		b := buildTree(t)
		cat := b.Children[0]
		cat.Children = cat.Children[:1]
		assert.False(t, a.IsStructureEqual(b))
	})

	t.Run("name and unread changes do not count as drift", func(t *testing.T) {
		a := buildTree(t)
		b := buildTree(t)
		b.Children[0].Children[0].Name = "Renamed"
		b.Children[0].Children[0].HasUnread = true
		assert.True(t, a.IsStructureEqual(b))
	})

	t.Run("nil compares unequal", func(t *testing.T) {
		assert.False(t, buildTree(t).IsStructureEqual(nil))
	})
}

func TestSetThreadList(t *testing.T) {
	t.Run("wholesale replacement disconnects stale threads", func(t *testing.T) {
		f := NewForum("10", "Announcements", ForumTypeForum)
		old := NewThread("t1", "old")
		require.NoError(t, f.SetThreadList([]*Thread{old}))
		assert.Same(t, f, old.Forum)

		fresh := NewThread("t2", "fresh")
		require.NoError(t, f.SetThreadList([]*Thread{fresh}))
		assert.Nil(t, old.Forum, "stale thread must be disconnected")
		require.Len(t, f.Threads(), 1)
		assert.Same(t, fresh, f.Threads()[0])
	})

	t.Run("categories hold no threads", func(t *testing.T) {
		cat := NewForum("1", "General", ForumTypeCategory)
		err := cat.SetThreadList([]*Thread{NewThread("t1", "x")})
		require.Error(t, err)
		assert.True(t, internal_errors.Is[*internal_errors.InvalidStateError](err))
	})
}

func TestWalk(t *testing.T) {
	var visited []string
	buildTree(t).Walk(func(f *Forum) { visited = append(visited, f.Id) })
	assert.Equal(t, []string{RootId, "1", "10", "11"}, visited)
}

func TestItemVars(t *testing.T) {
	f := NewForum("10", "x", ForumTypeForum)
	assert.Equal(t, "def", f.Var("missing", "def"))
	f.SetVar("perpage", "50")
	f.SetVar("sticky", "true")
	assert.Equal(t, 50, f.IntVar("perpage", 10))
	assert.Equal(t, 10, f.IntVar("absent", 10))
	assert.True(t, f.BoolVar("sticky", false))
	assert.True(t, f.HasVar("perpage"))

	// copies do not alias the bag
	vars := f.Vars()
	vars["perpage"] = "999"
	assert.Equal(t, 50, f.IntVar("perpage", 10))
}
