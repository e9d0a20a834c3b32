package util_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/larkwiot/bookexplorer/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string
	Value int
}

func toItem(e entry) (util.JsonStreamWriterItem, error) {
	data, err := json.Marshal(e.Value)
	return util.JsonStreamWriterItem{Key: e.Name, Data: data}, err
}

func TestJsonStreamWriterProducesObject(t *testing.T) {
	var buf bytes.Buffer
	stream, err := util.NewJsonStreamWriter[entry](&buf, toItem)
	require.NoError(t, err)

	stream.WriteObject(entry{Name: "a", Value: 1})
	stream.WriteObject(entry{Name: `say "hi"`, Value: 2})
	require.NoError(t, stream.Close())

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string]int{"a": 1, `say "hi"`: 2}, decoded)
	assert.Equal(t, 2, stream.Count())
}

func TestJsonStreamWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	stream, err := util.NewJsonStreamWriter[entry](&buf, toItem)
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	assert.Equal(t, "{}\n", buf.String())
}

func TestJsonStreamWriterRejectsInvalidData(t *testing.T) {
	var buf bytes.Buffer
	stream, err := util.NewJsonStreamWriter[entry](&buf, toItem)
	require.NoError(t, err)

	assert.Error(t, stream.WriteItem("bad", []byte("{")))
	require.NoError(t, stream.Close())
	assert.Equal(t, "{}\n", buf.String())
}

func TestThreadPoolBoundsConcurrency(t *testing.T) {
	pool := util.NewThreadPool(3)
	assert.Equal(t, 3, pool.Size())

	var running, peak atomic.Int32
	var lock sync.Mutex
	for i := 0; i < 12; i++ {
		pool.Go(func() {
			n := running.Add(1)
			lock.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			lock.Unlock()
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		})
	}
	pool.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, 0, pool.Running())
}

func TestPathHelpers(t *testing.T) {
	t.Setenv("HOME", "/home/reader")
	assert.Equal(t, "/home/reader/books.toml", util.ExpandUser("~/books.toml"))
	assert.Equal(t, "/etc/books.toml", util.ExpandUser("/etc/books.toml"))

	dir := t.TempDir()
	exists, err := util.PathExists(dir)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = util.PathExists(filepath.Join(dir, fmt.Sprintf("missing-%d", os.Getpid())))
	assert.NoError(t, err)
	assert.False(t, exists)
}
