package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopParser struct{ Parser }

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	r.Register("tapatalk4x", func(boardUrl string) (Parser, error) {
		return &nopParser{}, nil
	})
	r.Register("vbulletin3x", func(boardUrl string) (Parser, error) {
		return nil, errors.New("bad endpoint")
	})

	t.Run("create known protocol", func(t *testing.T) {
		p, err := r.Create("tapatalk4x", "http://example.com")
		require.NoError(t, err)
		assert.NotNil(t, p)
	})

	t.Run("factory error propagates", func(t *testing.T) {
		_, err := r.Create("vbulletin3x", "http://example.com")
		assert.Error(t, err)
	})

	t.Run("unknown protocol", func(t *testing.T) {
		_, err := r.Create("nosuch", "http://example.com")
		assert.Error(t, err)
	})

	t.Run("protocols sorted", func(t *testing.T) {
		assert.Equal(t, []string{"tapatalk4x", "vbulletin3x"}, r.Protocols())
	})

	t.Run("re-register replaces", func(t *testing.T) {
		r.Register("tapatalk4x", func(boardUrl string) (Parser, error) {
			return nil, errors.New("replaced")
		})
		_, err := r.Create("tapatalk4x", "http://example.com")
		assert.Error(t, err)
	})
}
