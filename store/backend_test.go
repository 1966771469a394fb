package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abstract-tutoring/card-crafter/config"
	"github.com/abstract-tutoring/card-crafter/models"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, "flashcards")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "flashcards", []byte(`[{"group":"A"}]`)))
	require.NoError(t, b.Set(ctx, "flashcards", []byte(`[{"group":"B"}]`)))

	got, ok, err := b.Get(ctx, "flashcards")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"group":"B"}]`, string(got))
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	exerciseBackend(t, b)
	assert.Equal(t, 2, b.Writes())
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	exerciseBackend(t, b)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "flashcards.json", entries[0].Name())
}

func TestFileBackendRejectsPathKeys(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	err = b.Set(context.Background(), "../escape", []byte("x"))
	require.Error(t, err)
	_, _, err = b.Get(context.Background(), "a/b")
	require.Error(t, err)
}

func TestFileBackendRequiresDir(t *testing.T) {
	_, err := NewFileBackend("")
	require.Error(t, err)
}

func TestStoreOverFileBackendSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := New(b, "")
	want, err := s.AddOrMergeGroup(ctx, biology())
	require.NoError(t, err)

	b2, err := NewFileBackend(dir)
	require.NoError(t, err)
	assert.Equal(t, want, New(b2, "").Load(ctx))
}

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

type fakeQuerier struct {
	mu      sync.Mutex
	rows    map[string][]byte
	execErr error
	lastSQL string
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastSQL = sql
	v, ok := q.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastSQL = sql
	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}
	q.rows[args[0].(string)] = args[1].([]byte)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresBackend(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]byte{}}
	b := newPostgresBackendWith(q)
	exerciseBackend(t, b)
	assert.Contains(t, q.lastSQL, "SELECT value FROM kv_store")
	b.Close()
}

func TestPostgresBackendErrors(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]byte{}, execErr: errors.New("connection reset")}
	b := newPostgresBackendWith(q)
	err := b.Set(context.Background(), "flashcards", []byte("[]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNewPostgresBackendRequiresURL(t *testing.T) {
	_, err := NewPostgresBackend(context.Background(), "")
	require.Error(t, err)
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	v, ok := f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(v))}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	raw, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)
	f.objects[key] = raw
	f.types[key] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Backend(t *testing.T) {
	f := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	b := newS3BackendWith(f, "cards", "prod")
	exerciseBackend(t, b)

	_, ok := f.objects["cards/prod/flashcards.json"]
	assert.True(t, ok)
	assert.Equal(t, "application/json", f.types["cards/prod/flashcards.json"])
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, closeFn, err := OpenBackend(ctx, config.StorageSection{Driver: config.DriverMemory})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryBackend{}, b)

	b, closeFn, err = OpenBackend(ctx, config.StorageSection{Driver: config.DriverFile, Path: t.TempDir()})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &FileBackend{}, b)

	_, closeFn, err = OpenBackend(ctx, config.StorageSection{Driver: "redis"})
	require.Error(t, err)
	assert.NotNil(t, closeFn)
}

func TestStoreOverS3Backend(t *testing.T) {
	ctx := context.Background()
	f := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s := New(newS3BackendWith(f, "cards", ""), "")

	want, err := s.AddOrMergeGroup(ctx, biology())
	require.NoError(t, err)
	assert.Equal(t, models.Collection{biology()}, want)

	reloaded := New(newS3BackendWith(f, "cards", ""), "")
	assert.Equal(t, want, reloaded.Load(ctx))
}
