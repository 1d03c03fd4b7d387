package archive

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/paulexconde/npsdash/internal/pkg/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Sink_Put(t *testing.T) {
	client := &fakeS3{}
	sink := newS3Sink(client, "nps-exports", "exports")

	require.NoError(t, sink.Put(context.Background(), "2025/01/02/x.csv", []byte("a,b\n")))
	assert.Equal(t, "nps-exports", aws.ToString(client.input.Bucket))
	assert.Equal(t, "exports/2025/01/02/x.csv", aws.ToString(client.input.Key))
	assert.Equal(t, "text/csv; charset=utf-8", aws.ToString(client.input.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(client.input.ContentLength))
	assert.Equal(t, "a,b\n", string(client.body))

	client.err = errors.New("access denied")
	err := sink.Put(context.Background(), "k.csv", nil)
	assert.ErrorContains(t, err, "s3://nps-exports/exports/k.csv")
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	at := time.Date(2025, 3, 9, 23, 30, 0, 0, time.FixedZone("+07", 7*3600))
	assert.Equal(t, "2025/03/09/6ba7b810-9dad-11d1-80b4-00c04fd430c8-nps_data_E1_2025-03-09.csv", Key("nps_data_E1_2025-03-09.csv", at, id))
}

type memorySink struct {
	mu    sync.Mutex
	fails int
	puts  map[string][]byte
}

func (m *memorySink) Put(ctx context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails > 0 {
		m.fails--
		return errors.New("throttled")
	}
	if m.puts == nil {
		m.puts = make(map[string][]byte)
	}
	m.puts[key] = body
	return nil
}

func TestArchiver_Archive(t *testing.T) {
	pool := workerpool.NewWorkerPool(context.Background(), 1, 4, zap.NewNop())
	sink := &memorySink{fails: 1}
	a := NewArchiver(sink, pool, 3, time.Millisecond, zap.NewNop())

	key, ok := a.Archive("nps_data_E1_2025-01-01.csv", []byte("csv"))
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pool.Shutdown(ctx)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, []byte("csv"), sink.puts[key])
}

func TestArchiver_Nil(t *testing.T) {
	var a *Archiver
	_, ok := a.Archive("x.csv", nil)
	assert.False(t, ok)
}
