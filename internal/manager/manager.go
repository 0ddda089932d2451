// Package manager holds the canonical collection of configured boards
// and drives their persistence. It is constructed explicitly and passed
// to collaborators; there is no process-wide instance.
package manager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/zethon/Owl-sub001/internal/board"
	"github.com/zethon/Owl-sub001/internal/errors"
	"github.com/zethon/Owl-sub001/internal/logger"
	"github.com/zethon/Owl-sub001/internal/metrics"
)

// Store is the durable backing the manager drives. DeleteBoard must
// compact the remaining boards' display order in the same transaction
// as the delete.
type Store interface {
	LoadBoards() ([]*board.Board, error)
	CreateBoard(b *board.Board) error
	UpdateBoard(b *board.Board) error
	SaveBoardOptions(b *board.Board) error
	DeleteBoard(b *board.Board) error
}

// Observer receives collection lifecycle events as begin/end pairs so a
// UI model can bracket its own row insert/remove bookkeeping.
type Observer interface {
	OnBoardAddBegin(b *board.Board)
	OnBoardAdded(b *board.Board)
	OnBoardRemoveBegin(b *board.Board)
	OnBoardRemoved(b *board.Board)
}

// boardData is what gets validated before a board may be persisted.
type boardData struct {
	Name     string `validate:"required,max=128"`
	Url      string `validate:"required,url"`
	Protocol string `validate:"required"`
}

type Manager struct {
	store    Store
	validate *validator.Validate

	// mu guards the in-memory collection. Renumbering after a delete
	// goes through a non-locking helper rather than re-entering the
	// public API, so a plain mutex suffices.
	mu     sync.Mutex
	boards []*board.Board

	obsMu     sync.Mutex
	observers []Observer
}

func New(store Store) *Manager {
	return &Manager{
		store:    store,
		validate: validator.New(),
	}
}

func (m *Manager) AddObserver(o Observer) {
	m.obsMu.Lock()
	m.observers = append(m.observers, o)
	m.obsMu.Unlock()
}

func (m *Manager) RemoveObserver(o Observer) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	for i, existing := range m.observers {
		if existing == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

func (m *Manager) eachObserver(fn func(Observer)) {
	m.obsMu.Lock()
	snapshot := make([]Observer, len(m.observers))
	copy(snapshot, m.observers)
	m.obsMu.Unlock()
	for _, o := range snapshot {
		fn(o)
	}
}

// LoadBoards replaces the in-memory collection with the persisted one.
// Duplicate primary keys from a corrupt store are dropped; the
// survivors are sorted by the user-controlled display order.
func (m *Manager) LoadBoards() error {
	loaded, err := m.store.LoadBoards()
	if err != nil {
		return fmt.Errorf("loading boards: %w", err)
	}

	seen := make(map[int64]struct{}, len(loaded))
	boards := make([]*board.Board, 0, len(loaded))
	for _, b := range loaded {
		if _, dup := seen[b.DbId]; dup {
			logger.Log.Warn("duplicate board id in store, dropping", "boardId", b.DbId, "name", b.Name())
			continue
		}
		seen[b.DbId] = struct{}{}
		boards = append(boards, b)
	}
	sort.SliceStable(boards, func(i, j int) bool {
		return boards[i].DisplayOrder() < boards[j].DisplayOrder()
	})

	m.mu.Lock()
	m.boards = boards
	m.mu.Unlock()
	metrics.BoardsRegistered.Set(float64(len(boards)))
	return nil
}

// Boards returns a snapshot of the collection in display order.
func (m *Manager) Boards() []*board.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*board.Board, len(m.boards))
	copy(out, m.boards)
	return out
}

func (m *Manager) BoardByUuid(uuid string) (*board.Board, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.boards {
		if b.Uuid() == uuid {
			return b, true
		}
	}
	return nil, false
}

// CreateBoard validates and persists a new board, appending it at the
// end of the display order. The board row itself must be durable or the
// whole operation fails; cascade persistence of options and forums is
// best-effort inside the store.
func (m *Manager) CreateBoard(b *board.Board) error {
	data := boardData{Name: b.Name(), Url: b.Url, Protocol: b.Protocol}
	if err := m.validate.Struct(data); err != nil {
		return &errors.ValidationError{Message: err.Error()}
	}

	m.mu.Lock()
	b.SetDisplayOrder(len(m.boards))
	m.mu.Unlock()

	m.eachObserver(func(o Observer) { o.OnBoardAddBegin(b) })
	if err := m.store.CreateBoard(b); err != nil {
		m.eachObserver(func(o Observer) { o.OnBoardAdded(b) })
		return err
	}

	m.mu.Lock()
	m.boards = append(m.boards, b)
	count := len(m.boards)
	m.mu.Unlock()
	metrics.BoardsRegistered.Set(float64(count))

	m.eachObserver(func(o Observer) { o.OnBoardAdded(b) })
	return nil
}

// UpdateBoard persists mutated board fields and its option bag.
func (m *Manager) UpdateBoard(b *board.Board) error {
	data := boardData{Name: b.Name(), Url: b.Url, Protocol: b.Protocol}
	if err := m.validate.Struct(data); err != nil {
		return &errors.ValidationError{Message: err.Error()}
	}
	if err := m.store.UpdateBoard(b); err != nil {
		return err
	}
	return m.store.SaveBoardOptions(b)
}

// DeleteBoard removes the board and everything hanging off it, then
// renumbers the remaining boards so display order stays dense.
func (m *Manager) DeleteBoard(b *board.Board) error {
	m.eachObserver(func(o Observer) { o.OnBoardRemoveBegin(b) })

	if err := m.store.DeleteBoard(b); err != nil {
		m.eachObserver(func(o Observer) { o.OnBoardRemoved(b) })
		return err
	}

	m.mu.Lock()
	for i, existing := range m.boards {
		if existing == b {
			m.boards = append(m.boards[:i], m.boards[i+1:]...)
			break
		}
	}
	m.renumberLocked()
	count := len(m.boards)
	m.mu.Unlock()
	metrics.BoardsRegistered.Set(float64(count))

	m.eachObserver(func(o Observer) { o.OnBoardRemoved(b) })
	return nil
}

// renumberLocked keeps the in-memory display order dense after a
// removal. The durable compaction already happened inside the store's
// delete transaction; this only mirrors it. Caller holds mu.
func (m *Manager) renumberLocked() {
	for i, b := range m.boards {
		b.SetDisplayOrder(i)
	}
}
