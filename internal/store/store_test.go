package store

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "abc.md")

	err := WriteDocument(path, &Document{
		Meta: map[string]any{"id": "abc", "turns": 3},
		Body: "### user\n\nshow me the databases\n",
	})
	require.NoError(t, err)

	got, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", String(got.Meta, "id"))
	assert.Equal(t, 3, Int(got.Meta, "turns"))
	assert.Contains(t, got.Body, "show me the databases")
	assert.False(t, Exists(path+".tmp"))
}

func TestWriteDocumentWithoutMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.md")

	require.NoError(t, WriteDocument(path, &Document{Body: "just text\n"}))

	got, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Empty(t, got.Meta)
	assert.Equal(t, "just text\n", got.Body)
}

func TestReadDocumentMissing(t *testing.T) {
	_, err := ReadDocument(filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.md", "a.md", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	paths, err := ListDocuments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "b.md")}, paths)

	paths, err = ListDocuments(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestMetaAccessors(t *testing.T) {
	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	meta := map[string]any{
		"name":    "mongoagent",
		"count":   float64(7),
		"created": FormatTime(when),
		"parsed":  when,
	}

	assert.Equal(t, "mongoagent", String(meta, "name"))
	assert.Equal(t, "", String(meta, "count"))
	assert.Equal(t, 7, Int(meta, "count"))
	assert.Equal(t, 0, Int(meta, "name"))
	assert.True(t, when.Equal(Time(meta, "created")))
	assert.True(t, when.Equal(Time(meta, "parsed")))
	assert.True(t, Time(meta, "missing").IsZero())
}

func TestWithLockRunsCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locktest")

	called := false
	require.NoError(t, WithLock(path, DefaultLockTimeout, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)

	called = false
	require.NoError(t, WithReadLock(path, DefaultLockTimeout, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestWithLockCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "share", "transcripts")
	path := filepath.Join(dir, "doc.md")

	require.NoError(t, WithLock(path, DefaultLockTimeout, func() error {
		return WriteDocument(path, &Document{Body: "hello"})
	}))

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Body)
}

func TestWithLockSerializesWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent")

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(path, 10*time.Second, func() error {
				val := atomic.LoadInt64(&counter)
				time.Sleep(time.Millisecond)
				atomic.StoreInt64(&counter, val+1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(10), atomic.LoadInt64(&counter))
}

func TestWithLockTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeouttest")

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = WithLock(path, 10*time.Second, func() error {
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	err := WithLock(path, 200*time.Millisecond, func() error {
		t.Error("callback should not run while the lock is held")
		return nil
	})
	assert.Error(t, err)

	close(release)
	<-done
}
