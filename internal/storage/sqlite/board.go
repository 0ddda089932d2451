package sqlite

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/zethon/Owl-sub001/internal/board"
	"github.com/zethon/Owl-sub001/internal/domain"
	internal_errors "github.com/zethon/Owl-sub001/internal/errors"
	"github.com/zethon/Owl-sub001/internal/logger"
)

// CreateBoard inserts the board row, assigning a fresh uuid, then
// cascades to its option bag and forum tree. Failure at the board row
// aborts the whole operation; failures inside the cascade are logged
// and skipped, since the board itself is already durable.
func (s *Store) CreateBoard(b *board.Board) error {
	if b.Uuid() == "" {
		b.SetUuid(uuid.NewString())
	}

	password, err := s.sealPassword(b.Password)
	if err != nil {
		return storageErr("encrypting board password", "", err)
	}

	const insertBoard = `INSERT INTO boards
		(enabled, autologin, name, url, parser, serviceUrl, username, password, icon, lastupdate, uuid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.Exec(insertBoard,
		b.Enabled, b.AutoLogin, b.Name(), b.Url, b.Protocol, b.ServiceUrl,
		b.Username, password, b.Icon, b.LastUpdate(), b.Uuid())
	if err != nil {
		return storageErr("inserting board row", insertBoard, err)
	}
	dbId, err := res.LastInsertId()
	if err != nil {
		return storageErr("reading board row id", insertBoard, err)
	}
	b.DbId = dbId

	// Best-effort cascade from here on.
	s.saveBoardVars(b)
	s.saveForumTree(b)
	return nil
}

func (s *Store) saveBoardVars(b *board.Board) {
	const insertVar = `INSERT INTO boardvars (boardid, name, value) VALUES (?, ?, ?)`
	for name, value := range b.Options() {
		if _, err := s.db.Exec(insertVar, b.DbId, name, value); err != nil {
			logger.Log.Error("persisting board option failed",
				"boardId", b.DbId, "option", name, "query", insertVar, "error", err)
		}
	}
}

// saveForumTree persists the forum hierarchy depth-first. Individual
// row failures are logged, not propagated.
func (s *Store) saveForumTree(b *board.Board) {
	root := b.Root()
	if root == nil {
		return
	}
	for i, child := range root.Children {
		s.saveForum(b.DbId, domain.RootId, child, i)
	}
}

func (s *Store) saveForum(boardId int64, parentId string, f *domain.Forum, order int) {
	const insertForum = `INSERT INTO forums
		(boardId, forumId, parentId, forumName, forumType, forumOrder)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.Exec(insertForum, boardId, f.Id, parentId, f.Name, string(f.ForumType), order)
	if err != nil {
		logger.Log.Error("persisting forum failed",
			"boardId", boardId, "forum", f.Id, "query", insertForum, "error", err)
		return
	}
	if dbId, err := res.LastInsertId(); err == nil {
		f.DbId = dbId
	}

	const insertVar = `INSERT INTO forumvars (forumsid, name, value) VALUES (?, ?, ?)`
	for name, value := range f.Vars() {
		if _, err := s.db.Exec(insertVar, f.DbId, name, value); err != nil {
			logger.Log.Error("persisting forum var failed",
				"forum", f.Id, "var", name, "query", insertVar, "error", err)
		}
	}

	for i, child := range f.Children {
		s.saveForum(boardId, f.Id, child, i)
	}
}

// UpdateBoard rewrites the board row. Unlike the cascade steps this is
// not best-effort: a failure here is surfaced.
func (s *Store) UpdateBoard(b *board.Board) error {
	password, err := s.sealPassword(b.Password)
	if err != nil {
		return storageErr("encrypting board password", "", err)
	}

	const update = `UPDATE boards SET
		enabled = ?, autologin = ?, name = ?, url = ?, parser = ?,
		serviceUrl = ?, username = ?, password = ?, icon = ?, lastupdate = ?
		WHERE boardid = ?`
	res, err := s.db.Exec(update,
		b.Enabled, b.AutoLogin, b.Name(), b.Url, b.Protocol, b.ServiceUrl,
		b.Username, password, b.Icon, b.LastUpdate(), b.DbId)
	if err != nil {
		return storageErr("updating board row", update, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return internal_errors.ErrNotFound
	}
	return nil
}

// SaveBoardOptions rewrites the board's option bag wholesale.
func (s *Store) SaveBoardOptions(b *board.Board) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("beginning option save", "", err)
	}
	defer tx.Rollback() // ignored once committed

	const del = `DELETE FROM boardvars WHERE boardid = ?`
	if _, err := tx.Exec(del, b.DbId); err != nil {
		return storageErr("clearing board options", del, err)
	}
	const ins = `INSERT INTO boardvars (boardid, name, value) VALUES (?, ?, ?)`
	for name, value := range b.Options() {
		if _, err := tx.Exec(ins, b.DbId, name, value); err != nil {
			return storageErr("writing board option", ins, err)
		}
	}
	return tx.Commit()
}

// DeleteBoard removes the board row, its options, its forum rows and
// their vars, then compacts the remaining boards' display order so the
// ordering stays dense. The compaction commits or rolls back with the
// delete.
func (s *Store) DeleteBoard(b *board.Board) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("beginning board delete", "", err)
	}
	defer tx.Rollback()

	steps := []struct {
		query string
		args  []any
	}{
		{`DELETE FROM forumvars WHERE forumsid IN (SELECT id FROM forums WHERE boardId = ?)`, []any{b.DbId}},
		{`DELETE FROM forums WHERE boardId = ?`, []any{b.DbId}},
		{`DELETE FROM boardvars WHERE boardid = ?`, []any{b.DbId}},
		{`DELETE FROM boards WHERE boardid = ?`, []any{b.DbId}},
	}
	for _, step := range steps {
		if _, err := tx.Exec(step.query, step.args...); err != nil {
			return storageErr("deleting board", step.query, err)
		}
	}

	if err := compactDisplayOrder(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// compactDisplayOrder renumbers the surviving boards' displayorder vars
// 0..n-1 in their current order.
func compactDisplayOrder(tx *sql.Tx) error {
	const q = `SELECT boardid, CAST(value AS INTEGER) FROM boardvars
		WHERE name = 'displayorder' ORDER BY CAST(value AS INTEGER), boardid`
	rows, err := tx.Query(q)
	if err != nil {
		return storageErr("reading display order", q, err)
	}
	type entry struct {
		boardId int64
		order   int
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.boardId, &e.order); err != nil {
			rows.Close()
			return storageErr("scanning display order", q, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return storageErr("iterating display order", q, err)
	}
	rows.Close()

	const update = `UPDATE boardvars SET value = ? WHERE boardid = ? AND name = 'displayorder'`
	for i, e := range entries {
		if e.order == i {
			continue
		}
		if _, err := tx.Exec(update, i, e.boardId); err != nil {
			return storageErr("renumbering display order", update, err)
		}
	}
	return nil
}

// LoadBoards bulk-loads every persisted board with its option bag and
// forum tree. Duplicate primary keys are skipped.
func (s *Store) LoadBoards() ([]*board.Board, error) {
	const q = `SELECT boardid, enabled, autologin, name, url, parser,
		serviceUrl, username, password, icon, lastupdate, uuid
		FROM boards ORDER BY boardid`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, storageErr("querying boards", q, err)
	}
	defer rows.Close()

	var boards []*board.Board
	seen := make(map[int64]struct{})
	for rows.Next() {
		var (
			dbId       int64
			enabled    bool
			autologin  bool
			name       string
			url        string
			protocol   string
			serviceUrl string
			username   string
			password   string
			icon       string
			lastupdate sql.NullTime
			boardUuid  string
		)
		if err := rows.Scan(&dbId, &enabled, &autologin, &name, &url, &protocol,
			&serviceUrl, &username, &password, &icon, &lastupdate, &boardUuid); err != nil {
			return nil, storageErr("scanning board row", q, err)
		}
		if _, dup := seen[dbId]; dup {
			logger.Log.Warn("duplicate board primary key in store", "boardId", dbId)
			continue
		}
		seen[dbId] = struct{}{}

		b := board.New(name, url, protocol)
		b.DbId = dbId
		b.Enabled = enabled
		b.AutoLogin = autologin
		b.ServiceUrl = serviceUrl
		b.Username = username
		b.Icon = icon
		b.SetUuid(boardUuid)
		if lastupdate.Valid {
			b.SetLastUpdate(lastupdate.Time)
		} else {
			b.SetLastUpdate(time.Time{})
		}

		plaintext, err := s.openPassword(password)
		if err != nil {
			logger.Log.Error("decrypting board password failed; credentials dropped",
				"boardId", dbId, "error", err)
			plaintext = ""
		}
		b.Password = plaintext

		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating boards", q, err)
	}

	for _, b := range boards {
		if err := s.loadBoardVars(b); err != nil {
			return nil, err
		}
		if err := s.loadForumTree(b); err != nil {
			return nil, err
		}
	}
	return boards, nil
}

func (s *Store) loadBoardVars(b *board.Board) error {
	const q = `SELECT name, value FROM boardvars WHERE boardid = ?`
	rows, err := s.db.Query(q, b.DbId)
	if err != nil {
		return storageErr("querying board options", q, err)
	}
	defer rows.Close()

	opts := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return storageErr("scanning board option", q, err)
		}
		opts[name] = value
	}
	if err := rows.Err(); err != nil {
		return storageErr("iterating board options", q, err)
	}
	b.SetOptions(opts)
	return nil
}

// loadForumTree rebuilds the persisted hierarchy under the board's
// synthetic root and re-indexes it.
func (s *Store) loadForumTree(b *board.Board) error {
	const q = `SELECT id, forumId, parentId, forumName, forumType, forumOrder
		FROM forums WHERE boardId = ? ORDER BY parentId, forumOrder`
	rows, err := s.db.Query(q, b.DbId)
	if err != nil {
		return storageErr("querying forums", q, err)
	}

	type row struct {
		dbId     int64
		forumId  string
		parentId string
	}
	nodes := make(map[string]*domain.Forum)
	byDbId := make(map[int64]*domain.Forum)
	var order []row
	for rows.Next() {
		var (
			r         row
			name      string
			forumType string
			ord       int
		)
		if err := rows.Scan(&r.dbId, &r.forumId, &r.parentId, &name, &forumType, &ord); err != nil {
			rows.Close()
			return storageErr("scanning forum row", q, err)
		}
		f := domain.NewForum(r.forumId, name, domain.ForumType(forumType))
		f.DbId = r.dbId
		f.DisplayOrder = ord
		nodes[r.forumId] = f
		byDbId[r.dbId] = f
		order = append(order, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return storageErr("iterating forums", q, err)
	}
	rows.Close()

	root := b.Root()
	for _, r := range order {
		node := nodes[r.forumId]
		if r.parentId == domain.RootId || r.parentId == "" {
			if err := root.AddChild(node); err != nil {
				logger.Log.Warn("orphaned forum row", "boardId", b.DbId, "forum", r.forumId, "error", err)
			}
			continue
		}
		parent, ok := nodes[r.parentId]
		if !ok {
			logger.Log.Warn("forum row references missing parent",
				"boardId", b.DbId, "forum", r.forumId, "parent", r.parentId)
			continue
		}
		if err := parent.AddChild(node); err != nil {
			logger.Log.Warn("orphaned forum row", "boardId", b.DbId, "forum", r.forumId, "error", err)
		}
	}

	if err := s.loadForumVars(b.DbId, byDbId); err != nil {
		return err
	}

	b.UpdateForumHash()
	return nil
}

func (s *Store) loadForumVars(boardId int64, byDbId map[int64]*domain.Forum) error {
	const q = `SELECT forumsid, name, value FROM forumvars
		WHERE forumsid IN (SELECT id FROM forums WHERE boardId = ?)`
	rows, err := s.db.Query(q, boardId)
	if err != nil {
		return storageErr("querying forum vars", q, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			forumDbId   int64
			name, value string
		)
		if err := rows.Scan(&forumDbId, &name, &value); err != nil {
			return storageErr("scanning forum var", q, err)
		}
		if f, ok := byDbId[forumDbId]; ok {
			f.SetVar(name, value)
		}
	}
	return rows.Err()
}

// BoardByUuid fetches a single board row.
func (s *Store) BoardByUuid(u string) (*board.Board, error) {
	boards, err := s.LoadBoards()
	if err != nil {
		return nil, err
	}
	for _, b := range boards {
		if b.Uuid() == u {
			return b, nil
		}
	}
	return nil, internal_errors.ErrNotFound
}
