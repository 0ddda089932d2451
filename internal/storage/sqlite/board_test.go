package sqlite

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zethon/Owl-sub001/internal/board"
	"github.com/zethon/Owl-sub001/internal/crypto"
	"github.com/zethon/Owl-sub001/internal/domain"
	internal_errors "github.com/zethon/Owl-sub001/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cipher, err := crypto.New(key)
	require.NoError(t, err)
	s, err := New(":memory:", cipher)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBoard(name string) *board.Board {
	b := board.New(name, "http://"+name+".example.com", "tapatalk4x")
	b.ServiceUrl = "http://" + name + ".example.com/mobiquo/mobiquo.php"
	b.Username = "owluser"
	b.Password = "hunter2"
	b.AutoLogin = true
	b.SetOption(board.OptionRefreshRate, "600")
	b.SetOption(board.OptionThreadsPerPage, "25")

	cat := domain.NewForum("1", "General", domain.ForumTypeCategory)
	ann := domain.NewForum("10", "Announcements", domain.ForumTypeForum)
	off := domain.NewForum("11", "Off-Topic", domain.ForumTypeForum)
	link := domain.NewForum("20", "Project Site", domain.ForumTypeLink)
	link.SetVar(domain.VarForumUrl, "http://example.com")
	_ = cat.AddChild(ann)
	_ = cat.AddChild(off)
	_ = b.Root().AddChild(cat)
	_ = b.Root().AddChild(link)
	return b
}

func TestCreateAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	original := sampleBoard("forum")
	require.NoError(t, s.CreateBoard(original))
	assert.NotEqual(t, domain.UnpersistedDbId, original.DbId)
	assert.NotEmpty(t, original.Uuid())

	boards, err := s.LoadBoards()
	require.NoError(t, err)
	require.Len(t, boards, 1)
	loaded := boards[0]

	assert.Equal(t, original.Name(), loaded.Name())
	assert.Equal(t, original.Url, loaded.Url)
	assert.Equal(t, original.ServiceUrl, loaded.ServiceUrl)
	assert.Equal(t, original.Protocol, loaded.Protocol)
	assert.Equal(t, original.Username, loaded.Username)
	assert.Equal(t, "hunter2", loaded.Password)
	assert.Equal(t, original.Uuid(), loaded.Uuid())
	assert.True(t, loaded.AutoLogin)
	assert.Equal(t, "600", loaded.Option(board.OptionRefreshRate, ""))
	assert.Equal(t, "25", loaded.Option(board.OptionThreadsPerPage, ""))

	// forum tree survives with shape, types and vars intact
	assert.True(t, original.Root().IsStructureEqual(loaded.Root()))
	require.Len(t, loaded.Root().Children, 2)
	cat := loaded.Root().Children[0]
	assert.Equal(t, "General", cat.Name)
	assert.Equal(t, domain.ForumTypeCategory, cat.ForumType)
	link := loaded.Root().Children[1]
	assert.Equal(t, domain.ForumTypeLink, link.ForumType)
	assert.Equal(t, "http://example.com", link.Var(domain.VarForumUrl, ""))

	// the loaded tree is indexed
	ann, ok := loaded.ForumById("10")
	require.True(t, ok)
	assert.Equal(t, "Announcements", ann.Name)
}

func TestPasswordEncryptedAtRest(t *testing.T) {
	s := newTestStore(t)
	b := sampleBoard("sec")
	require.NoError(t, s.CreateBoard(b))

	var stored string
	err := s.db.QueryRow(`SELECT password FROM boards WHERE boardid = ?`, b.DbId).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored)
	assert.NotEmpty(t, stored)
}

func TestCreateBoardAssignsDistinctUuids(t *testing.T) {
	s := newTestStore(t)
	a := sampleBoard("a")
	b := sampleBoard("b")
	require.NoError(t, s.CreateBoard(a))
	require.NoError(t, s.CreateBoard(b))
	assert.NotEqual(t, a.Uuid(), b.Uuid())
}

func TestDeleteBoardCompactsDisplayOrder(t *testing.T) {
	s := newTestStore(t)

	var boards []*board.Board
	for i := 0; i < 4; i++ {
		b := sampleBoard(fmt.Sprintf("board%d", i))
		b.SetDisplayOrder(i)
		require.NoError(t, s.CreateBoard(b))
		boards = append(boards, b)
	}

	// delete the board at displayOrder=2 out of {0,1,2,3}
	require.NoError(t, s.DeleteBoard(boards[2]))

	loaded, err := s.LoadBoards()
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	var orders []int
	for _, b := range loaded {
		n, err := strconv.Atoi(b.Option(board.OptionDisplayOrder, ""))
		require.NoError(t, err)
		orders = append(orders, n)
	}
	assert.ElementsMatch(t, []int{0, 1, 2}, orders, "remaining orders must be dense with no gap")

	// the deleted board's rows are gone entirely
	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM forums WHERE boardId = ?`, boards[2].DbId).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM boardvars WHERE boardid = ?`, boards[2].DbId).Scan(&count))
	assert.Zero(t, count)
}

func TestUpdateBoard(t *testing.T) {
	s := newTestStore(t)
	b := sampleBoard("upd")
	require.NoError(t, s.CreateBoard(b))

	b.SetName("renamed")
	b.Username = "newuser"
	b.Password = "newpass"
	require.NoError(t, s.UpdateBoard(b))

	b.SetOption(board.OptionPostsPerPage, "40")
	require.NoError(t, s.SaveBoardOptions(b))

	loaded, err := s.LoadBoards()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "renamed", loaded[0].Name())
	assert.Equal(t, "newuser", loaded[0].Username)
	assert.Equal(t, "newpass", loaded[0].Password)
	assert.Equal(t, "40", loaded[0].Option(board.OptionPostsPerPage, ""))
}

func TestUpdateMissingBoard(t *testing.T) {
	s := newTestStore(t)
	b := sampleBoard("ghost")
	b.DbId = 12345
	err := s.UpdateBoard(b)
	assert.ErrorIs(t, err, internal_errors.ErrNotFound)
}

func TestBoardByUuid(t *testing.T) {
	s := newTestStore(t)
	b := sampleBoard("x")
	require.NoError(t, s.CreateBoard(b))

	found, err := s.BoardByUuid(b.Uuid())
	require.NoError(t, err)
	assert.Equal(t, b.DbId, found.DbId)

	_, err = s.BoardByUuid("no-such-uuid")
	assert.ErrorIs(t, err, internal_errors.ErrNotFound)
}

func TestNilCipherStoresPlaintext(t *testing.T) {
	s, err := New(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	b := sampleBoard("plain")
	require.NoError(t, s.CreateBoard(b))
	loaded, err := s.LoadBoards()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "hunter2", loaded[0].Password)
}
