package badger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := OpenBackend(file, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestWithTx(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	t.Run("committed write is visible", func(t *testing.T) {
		err := backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set([]byte("k1"), []byte("v1")); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		require.NoError(t, err)

		err = backend.WithTx(func(tx *badger.Txn) error {
			_, err := tx.Get([]byte("k1"))
			return err
		}, false)
		assert.NoError(t, err)
	})

	t.Run("failed write is discarded", func(t *testing.T) {
		err := backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set([]byte("k2"), []byte("v2")); err != nil {
				return err
			}
			return assert.AnError
		}, true)
		assert.Equal(t, assert.AnError, err)

		err = backend.WithTx(func(tx *badger.Txn) error {
			_, err := tx.Get([]byte("k2"))
			return err
		}, false)
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
	})
}

func TestGetSequence(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	seq, err := backend.GetSequence("test_sequence")
	require.NoError(t, err)
	require.NotNil(t, seq)
	defer seq.Release()

	id1, err := nextID(seq)
	require.NoError(t, err)
	assert.NotZero(t, id1)

	id2, err := nextID(seq)
	require.NoError(t, err)

	// IDs should be sequential
	assert.Greater(t, id2, id1)
}

func TestKeyOrdering(t *testing.T) {
	assert.Equal(t, -1, bytes.Compare(makeQAItemKey(core.ID(2)), makeQAItemKey(core.ID(10))))
	assert.Equal(t, -1, bytes.Compare(makeChatRecordKey(core.ID(255)), makeChatRecordKey(core.ID(256))))

	now := time.Now().UTC()
	earlier := makeConversationKey("c1", now, core.ID(9))
	later := makeConversationKey("c1", now.Add(time.Millisecond), core.ID(1))
	assert.Equal(t, -1, bytes.Compare(earlier, later))

	// Same timestamp falls back to ID order
	a := makeConversationKey("c1", now, core.ID(1))
	b := makeConversationKey("c1", now, core.ID(2))
	assert.Equal(t, -1, bytes.Compare(a, b))
}

func TestConversationPrefixIsolation(t *testing.T) {
	key := makeConversationKey("ab", time.Now(), core.ID(1))
	assert.True(t, bytes.HasPrefix(key, makeConversationPrefix("ab")))
	assert.False(t, bytes.HasPrefix(key, makeConversationPrefix("a")))
	assert.Equal(t, 1, bytes.Compare(prefixEnd(makeConversationPrefix("ab")), key))
}

func TestQuestionKeyIgnoresCaseAndSpacing(t *testing.T) {
	assert.Equal(t, makeQAQuestionKey("O que é feedback?"), makeQAQuestionKey("  o que  É FEEDBACK? "))
	assert.NotEqual(t, makeQAQuestionKey("O que é feedback?"), makeQAQuestionKey("O que é ruído?"))
}
