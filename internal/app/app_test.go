package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"s3batch/internal/config"
	"s3batch/internal/journal"
	"s3batch/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGateway is an in-memory storage.Client
type fakeGateway struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	failPut  map[string]bool
	removed  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		objects:  make(map[string][]byte),
		pageSize: 1000,
		failPut:  make(map[string]bool),
	}
}

func (g *fakeGateway) sortedKeys(prefix string) []string {
	keys := make([]string, 0, len(g.objects))
	for k := range g.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (g *fakeGateway) ListPage(ctx context.Context, bucket, prefix, token string) (storage.Page, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := g.sortedKeys(prefix)

	start := 0
	if token != "" {
		start, _ = strconv.Atoi(token)
	}
	end := start + g.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	page := storage.Page{}
	for _, k := range keys[start:end] {
		page.Objects = append(page.Objects, storage.ObjectInfo{
			Key:  k,
			Size: int64(len(g.objects[k])),
		})
	}
	if end < len(keys) {
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

func (g *fakeGateway) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, ok := g.objects[key]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (g *fakeGateway) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts storage.PutOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failPut[key] {
		return errors.New("injected put failure")
	}
	g.objects[key] = data
	return nil
}

func (g *fakeGateway) StatObject(ctx context.Context, bucket, key string) (storage.ObjectInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, ok := g.objects[key]
	if !ok {
		return storage.ObjectInfo{}, fmt.Errorf("key not found: %s", key)
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (g *fakeGateway) RemoveObject(ctx context.Context, bucket, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.objects[key]; !ok {
		return fmt.Errorf("key not found: %s", key)
	}
	delete(g.objects, key)
	g.removed = append(g.removed, key)
	return nil
}

func (g *fakeGateway) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	return url.Parse("https://example.test/" + bucket + "/" + key + "?method=GET")
}

func (g *fakeGateway) PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	return url.Parse("https://example.test/" + bucket + "/" + key + "?method=PUT")
}

// fakeJournal is an in-memory journal.Store
type fakeJournal struct {
	mu      sync.Mutex
	records []*journal.Record
}

func (j *fakeJournal) Append(record *journal.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, record)
	return nil
}

func (j *fakeJournal) Recent(limit int) ([]*journal.Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if limit > len(j.records) {
		limit = len(j.records)
	}
	out := make([]*journal.Record, 0, limit)
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.records[i])
	}
	return out, nil
}

func (j *fakeJournal) Close() error { return nil }

func newTestApp(gateway storage.Client) (*App, *fakeJournal) {
	cfg := &config.Config{
		LogLevel: "info",
		Transfer: config.TransferConfig{
			Parallelism:  4,
			ShowProgress: false,
		},
	}
	j := &fakeJournal{}
	return newApp(cfg, zap.NewNop(), gateway, j), j
}

func seedObjects(g *fakeGateway, prefix string, n int) {
	for i := 0; i < n; i++ {
		g.objects[fmt.Sprintf("%s/obj-%d", prefix, i)] = []byte("data")
	}
}

func TestDeleteRecursiveDryRunDeletesNothing(t *testing.T) {
	g := newFakeGateway()
	seedObjects(g, "p", 5)
	a, j := newTestApp(g)

	err := a.Delete(context.Background(), DeleteRequest{
		Bucket: "b", Key: "p/", Recursive: true, DryRun: true, Confirmed: false, Parallelism: 4,
	})
	require.NoError(t, err)

	assert.Len(t, g.objects, 5)
	assert.Empty(t, g.removed)
	assert.Empty(t, j.records, "dry run must not journal outcomes")
}

func TestDeleteRecursiveDryRunWinsOverConfirmed(t *testing.T) {
	g := newFakeGateway()
	seedObjects(g, "p", 3)
	a, _ := newTestApp(g)

	err := a.Delete(context.Background(), DeleteRequest{
		Bucket: "b", Key: "p/", Recursive: true, DryRun: true, Confirmed: true, Parallelism: 4,
	})
	require.NoError(t, err)
	assert.Len(t, g.objects, 3)
}

func TestDeleteRecursiveUnconfirmed(t *testing.T) {
	g := newFakeGateway()
	seedObjects(g, "p", 5)
	a, _ := newTestApp(g)

	err := a.Delete(context.Background(), DeleteRequest{
		Bucket: "b", Key: "p/", Recursive: true, Parallelism: 4,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	var confErr *ConfirmationRequiredError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, 5, confErr.Count)

	assert.Len(t, g.objects, 5, "unconfirmed delete must have zero side effects")
}

func TestDeleteSingleUnconfirmed(t *testing.T) {
	g := newFakeGateway()
	g.objects["p/a.txt"] = []byte("x")
	a, _ := newTestApp(g)

	err := a.Delete(context.Background(), DeleteRequest{Bucket: "b", Key: "p/a.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Len(t, g.objects, 1)
}

func TestDeleteSingleConfirmed(t *testing.T) {
	g := newFakeGateway()
	g.objects["p/a.txt"] = []byte("x")
	g.objects["p/b.txt"] = []byte("y")
	a, j := newTestApp(g)

	err := a.Delete(context.Background(), DeleteRequest{Bucket: "b", Key: "p/a.txt", Confirmed: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"p/a.txt"}, g.removed, "exactly one deletion")
	assert.Len(t, g.objects, 1)

	require.Len(t, j.records, 1)
	assert.Equal(t, journal.StatusSuccess, j.records[0].Status)
}

func TestDeleteMissingKeyIsFailureNotCrash(t *testing.T) {
	g := newFakeGateway()
	a, j := newTestApp(g)

	err := a.Delete(context.Background(), DeleteRequest{Bucket: "b", Key: "ghost", Confirmed: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1")

	require.Len(t, j.records, 1)
	assert.Equal(t, journal.StatusFailed, j.records[0].Status)
}

func TestDeleteRecursiveConfirmed(t *testing.T) {
	g := newFakeGateway()
	seedObjects(g, "p", 5)
	g.objects["other/keep.txt"] = []byte("keep")
	a, j := newTestApp(g)

	err := a.Delete(context.Background(), DeleteRequest{
		Bucket: "b", Key: "p/", Recursive: true, Confirmed: true, Parallelism: 4,
	})
	require.NoError(t, err)

	assert.Len(t, g.removed, 5)
	assert.Contains(t, g.objects, "other/keep.txt")
	assert.Len(t, j.records, 5)
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b", "c.txt"), []byte("charlie"), 0o644))

	g := newFakeGateway()
	a, _ := newTestApp(g)

	err := a.Upload(context.Background(), UploadRequest{
		Bucket: "b", Src: src, DestPrefix: "p", Parallelism: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("alpha"), g.objects["p/a.txt"])
	assert.Equal(t, []byte("charlie"), g.objects["p/b/c.txt"])
	assert.Len(t, g.objects, 2)

	dst := t.TempDir()
	err = a.Download(context.Background(), DownloadRequest{
		Bucket: "b", Key: "p", Dest: dst, Recursive: true, Parallelism: 4,
	})
	require.NoError(t, err)

	gotA, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), gotA)

	gotC, err := os.ReadFile(filepath.Join(dst, "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("charlie"), gotC)
}

func TestUploadSingleFile(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "one.bin")
	require.NoError(t, os.WriteFile(file, []byte("payload"), 0o644))

	g := newFakeGateway()
	a, _ := newTestApp(g)

	err := a.Upload(context.Background(), UploadRequest{
		Bucket: "b", Src: file, DestPrefix: "p", Parallelism: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), g.objects["p/one.bin"])
}

func TestUploadPartialFailureIsReported(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "good.txt"), []byte("ok"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bad.txt"), []byte("no"), 0o644))

	g := newFakeGateway()
	g.failPut["bad.txt"] = true
	a, j := newTestApp(g)

	err := a.Upload(context.Background(), UploadRequest{
		Bucket: "b", Src: src, Parallelism: 2,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")

	// The sibling item still completed.
	assert.Equal(t, []byte("ok"), g.objects["good.txt"])

	var failed int
	for _, rec := range j.records {
		if rec.Status == journal.StatusFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestDownloadSingleObject(t *testing.T) {
	g := newFakeGateway()
	g.objects["p/a.txt"] = []byte("alpha")
	a, _ := newTestApp(g)

	dst := filepath.Join(t.TempDir(), "out.txt")
	err := a.Download(context.Background(), DownloadRequest{
		Bucket: "b", Key: "p/a.txt", Dest: dst, Parallelism: 1,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)
}

func TestDownloadIntoExistingDirectory(t *testing.T) {
	g := newFakeGateway()
	g.objects["p/a.txt"] = []byte("alpha")
	a, _ := newTestApp(g)

	dst := t.TempDir()
	err := a.Download(context.Background(), DownloadRequest{
		Bucket: "b", Key: "p/a.txt", Dest: dst, Parallelism: 1,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)
}

func TestListEmptyPrefix(t *testing.T) {
	g := newFakeGateway()
	a, _ := newTestApp(g)

	assert.NoError(t, a.List(context.Background(), "b", "missing/"))
}

func TestPresignPassthrough(t *testing.T) {
	g := newFakeGateway()
	a, _ := newTestApp(g)

	u, err := a.Presign(context.Background(), "b", "p/a.txt", "get", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u.String(), "method=GET")

	u, err = a.Presign(context.Background(), "b", "p/a.txt", "PUT", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u.String(), "method=PUT")

	_, err = a.Presign(context.Background(), "b", "p/a.txt", "DELETE", time.Minute)
	assert.Error(t, err)
}

func TestHistoryReadsJournal(t *testing.T) {
	g := newFakeGateway()
	a, j := newTestApp(g)

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(&journal.Record{
			Bucket:    "b",
			Key:       fmt.Sprintf("k-%d", i),
			Operation: "upload",
			Status:    journal.StatusSuccess,
		}))
	}

	assert.NoError(t, a.History(3))
}
