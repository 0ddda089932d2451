package domain

import "strconv"

// RootId is the synthetic id of the one tree root every board owns.
// No protocol-assigned forum id ever equals it.
const RootId = "-1"

// UnpersistedDbId marks an item that has not been written to the store yet.
const UnpersistedDbId int64 = -1

// Item is the shared identity of everything hanging off a board:
// protocol-assigned opaque id, local database id, sort key and the
// string-keyed bag of protocol-specific metadata.
type Item struct {
	Id           string
	DbId         int64
	DisplayOrder int
	vars         map[string]string
}

func newItem(id string) Item {
	return Item{Id: id, DbId: UnpersistedDbId}
}

// Var returns the named variable or def when unset.
func (i *Item) Var(name, def string) string {
	if v, ok := i.vars[name]; ok {
		return v
	}
	return def
}

func (i *Item) SetVar(name, value string) {
	if i.vars == nil {
		i.vars = make(map[string]string)
	}
	i.vars[name] = value
}

func (i *Item) HasVar(name string) bool {
	_, ok := i.vars[name]
	return ok
}

// Vars returns a copy of the variable bag. Mutating the result does not
// touch the item.
func (i *Item) Vars() map[string]string {
	out := make(map[string]string, len(i.vars))
	for k, v := range i.vars {
		out[k] = v
	}
	return out
}

func (i *Item) IntVar(name string, def int) int {
	v, ok := i.vars[name]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (i *Item) BoolVar(name string, def bool) bool {
	v, ok := i.vars[name]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// BoardHandle is the weak back-reference threads and posts keep to the
// board that owns them. The parser layer never sets it; the board does,
// since the parser has no concept of a board.
type BoardHandle interface {
	Uuid() string
	Name() string
}
