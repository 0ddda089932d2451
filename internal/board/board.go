// Package board implements the aggregate at the center of the client:
// one configured connection to a remote forum, its cached forum tree,
// the parser binding that talks to the server and the observer fan-out
// the UI consumes.
package board

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/zethon/Owl-sub001/internal/domain"
	"github.com/zethon/Owl-sub001/internal/errors"
	"github.com/zethon/Owl-sub001/internal/parser"
)

type Status int

const (
	StatusOffline Status = iota
	StatusOnline
	StatusErr
)

func (s Status) String() string {
	switch s {
	case StatusOffline:
		return "OFFLINE"
	case StatusOnline:
		return "ONLINE"
	case StatusErr:
		return "ERR"
	default:
		return "UNKNOWN"
	}
}

// Well-known option-bag keys.
const (
	OptionRefreshRate    = "refreshrate" // seconds between poll cycles
	OptionThreadsPerPage = "threadsperpage"
	OptionPostsPerPage   = "postsperpage"
	OptionUserAgent      = "useragent"
	OptionDisplayOrder   = "displayorder"
	OptionThreadView     = "threadview" // firstunread | first | last
)

// structureCheckInterval gates how often a board re-fetches the remote
// structure for drift detection.
const structureCheckInterval = 24 * time.Hour

// Board owns one forum tree, at most one bound parser, the
// current-forum/current-thread cursors and the session state machine.
// The tree is canonical only between crawls; threads and posts attached
// to it are transient.
type Board struct {
	DbId       int64
	Url        string
	ServiceUrl string
	Username   string
	Password   string
	Protocol   string
	Icon       string
	Enabled    bool
	AutoLogin  bool

	uuid string
	name string

	// mu guards session state, cursors, options and the tree root.
	// It is never held across parser I/O or observer callbacks.
	mu            sync.Mutex
	status        Status
	lastUpdate    time.Time
	options       map[string]string
	root          *domain.Forum
	currentForum  *domain.Forum
	currentThread *domain.Thread
	parser        parser.Parser

	// hashMu guards only the forumId index rebuild, so a slow network
	// call can never stall a hash lookup.
	hashMu    sync.Mutex
	forumHash map[string]*domain.Forum

	// pollMu is the per-board busy guard the background worker
	// try-locks; an overlapping cycle is dropped, not queued.
	pollMu sync.Mutex

	obsMu     sync.Mutex
	observers []Observer
}

func New(name, url, protocol string) *Board {
	return &Board{
		DbId:      domain.UnpersistedDbId,
		name:      name,
		Url:       url,
		Protocol:  protocol,
		Enabled:   true,
		status:    StatusOffline,
		options:   make(map[string]string),
		root:      domain.NewRootForum(),
		forumHash: make(map[string]*domain.Forum),
	}
}

var _ domain.BoardHandle = (*Board)(nil)

func (b *Board) Uuid() string     { return b.uuid }
func (b *Board) SetUuid(u string) { b.uuid = u }
func (b *Board) Name() string     { return b.name }
func (b *Board) SetName(n string) { b.name = n }

func (b *Board) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Board) setStatus(s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

func (b *Board) LastUpdate() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUpdate
}

func (b *Board) SetLastUpdate(t time.Time) {
	b.mu.Lock()
	b.lastUpdate = t
	b.mu.Unlock()
}

func (b *Board) Root() *domain.Forum {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.root
}

func (b *Board) CurrentForum() *domain.Forum {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentForum
}

func (b *Board) CurrentThread() *domain.Thread {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentThread
}

// Option returns the named board option or def when unset.
func (b *Board) Option(name, def string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.options[name]; ok {
		return v
	}
	return def
}

func (b *Board) IntOption(name string, def int) int {
	v := b.Option(name, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (b *Board) BoolOption(name string, def bool) bool {
	v := b.Option(name, "")
	if v == "" {
		return def
	}
	val, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return val
}

func (b *Board) SetOption(name, value string) {
	b.mu.Lock()
	b.options[name] = value
	b.mu.Unlock()
}

// Options returns a copy of the option bag.
func (b *Board) Options() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.options))
	for k, v := range b.options {
		out[k] = v
	}
	return out
}

// SetOptions replaces the option bag wholesale; used when loading a
// persisted board.
func (b *Board) SetOptions(opts map[string]string) {
	b.mu.Lock()
	b.options = make(map[string]string, len(opts))
	for k, v := range opts {
		b.options[k] = v
	}
	b.mu.Unlock()
}

func (b *Board) DisplayOrder() int {
	return b.IntOption(OptionDisplayOrder, 0)
}

func (b *Board) SetDisplayOrder(n int) {
	b.SetOption(OptionDisplayOrder, strconv.Itoa(n))
}

// RefreshRate returns the poll interval from the option bag, falling
// back to def.
func (b *Board) RefreshRate(def time.Duration) time.Duration {
	secs := b.IntOption(OptionRefreshRate, 0)
	if secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

func (b *Board) AddObserver(o Observer) {
	b.obsMu.Lock()
	b.observers = append(b.observers, o)
	b.obsMu.Unlock()
}

func (b *Board) RemoveObserver(o Observer) {
	b.obsMu.Lock()
	defer b.obsMu.Unlock()
	for i, existing := range b.observers {
		if existing == o {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

func (b *Board) eachObserver(fn func(Observer)) {
	b.obsMu.Lock()
	snapshot := make([]Observer, len(b.observers))
	copy(snapshot, b.observers)
	b.obsMu.Unlock()
	for _, o := range snapshot {
		fn(o)
	}
}

// SetParser rebinds the board to a parser. The previous parser's event
// wiring is fully detached before the new one is attached, so a stale
// parser can never deliver ghost callbacks into this board.
func (b *Board) SetParser(p parser.Parser) {
	b.mu.Lock()
	old := b.parser
	b.parser = p
	b.mu.Unlock()

	if old != nil {
		old.Unbind()
	}
	if p != nil {
		p.Bind(&boardListener{b: b})
	}
}

func (b *Board) parserRef() parser.Parser {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parser
}

// AttachParser instantiates this board's protocol from the registry and
// binds it. Instantiation failure puts the board into ERR; only a later
// Login can move it out.
func (b *Board) AttachParser(reg *parser.Registry) error {
	url := b.ServiceUrl
	if url == "" {
		url = b.Url
	}
	p, err := reg.Create(b.Protocol, url)
	if err != nil {
		b.setStatus(StatusErr)
		return fmt.Errorf("instantiating parser %q for board %q: %w", b.Protocol, b.name, err)
	}
	b.SetParser(p)
	return nil
}

// Login authenticates against the remote forum. The outcome arrives
// asynchronously through OnLoginCompleted; this only issues the request.
func (b *Board) Login() error {
	p := b.parserRef()
	if p == nil {
		return &errors.InvalidStateError{Message: fmt.Sprintf("board %q has no parser bound", b.name)}
	}
	p.Login(parser.Credentials{Username: b.Username, Password: b.Password})
	return nil
}

// RequestThreadList sets the current-forum cursor and asks the parser
// for the forum's thread list. The per-page count comes from the
// board's option bag, not a protocol default.
func (b *Board) RequestThreadList(forum *domain.Forum, page int) error {
	p := b.parserRef()
	if p == nil {
		return &errors.InvalidStateError{Message: fmt.Sprintf("board %q has no parser bound", b.name)}
	}
	perPage := b.IntOption(OptionThreadsPerPage, 25)
	forum.PerPage = perPage

	b.mu.Lock()
	b.currentForum = forum
	b.mu.Unlock()

	p.RequestThreadList(forum, parser.RequestOptions{Page: page, PerPage: perPage})
	return nil
}

// RequestPostList sets the current-thread cursor and asks the parser
// for the thread's posts. forceFirstPage overrides the user's saved
// landing-page preference; it is set when paginating explicitly rather
// than navigating in from the thread list.
func (b *Board) RequestPostList(thread *domain.Thread, page int, forceFirstPage bool) error {
	p := b.parserRef()
	if p == nil {
		return &errors.InvalidStateError{Message: fmt.Sprintf("board %q has no parser bound", b.name)}
	}
	perPage := b.IntOption(OptionPostsPerPage, 10)
	thread.PerPage = perPage

	view := b.postViewOption()
	if forceFirstPage {
		view = parser.ViewFirstPost
	}

	b.mu.Lock()
	b.currentThread = thread
	b.mu.Unlock()

	p.RequestPosts(thread, view, parser.RequestOptions{Page: page, PerPage: perPage})
	return nil
}

func (b *Board) postViewOption() parser.PostViewOption {
	switch b.Option(OptionThreadView, "firstunread") {
	case "first":
		return parser.ViewFirstPost
	case "last":
		return parser.ViewLastPost
	default:
		return parser.ViewFirstUnread
	}
}

// SubmitNewThread posts a new thread to the given forum.
func (b *Board) SubmitNewThread(thread *domain.Thread) error {
	p := b.parserRef()
	if p == nil {
		return &errors.InvalidStateError{Message: fmt.Sprintf("board %q has no parser bound", b.name)}
	}
	thread.Board = b
	p.SubmitNewThread(thread)
	return nil
}

// SubmitNewPost posts a reply.
func (b *Board) SubmitNewPost(post *domain.Post) error {
	p := b.parserRef()
	if p == nil {
		return &errors.InvalidStateError{Message: fmt.Sprintf("board %q has no parser bound", b.name)}
	}
	post.Board = b
	p.SubmitNewPost(post)
	return nil
}

// MarkForumRead asks the server to mark everything in the forum read.
func (b *Board) MarkForumRead(forum *domain.Forum) error {
	p := b.parserRef()
	if p == nil {
		return &errors.InvalidStateError{Message: fmt.Sprintf("board %q has no parser bound", b.name)}
	}
	p.MarkForumRead(forum)
	return nil
}

// TryBeginUpdate takes the board's non-blocking poll guard. A false
// return means a previous cycle is still running and this tick should
// be dropped.
func (b *Board) TryBeginUpdate() bool {
	return b.pollMu.TryLock()
}

func (b *Board) EndUpdate() {
	b.pollMu.Unlock()
}
