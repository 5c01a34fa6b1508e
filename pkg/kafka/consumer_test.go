package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages and then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

type fakeDLQ struct {
	msgs   []kafka.Message
	causes []error
}

func (d *fakeDLQ) Publish(_ context.Context, msg kafka.Message, cause error, _ string) error {
	d.msgs = append(d.msgs, msg)
	d.causes = append(d.causes, cause)
	return nil
}

func commandMessage(t *testing.T, offset int64) kafka.Message {
	t.Helper()
	event, err := NewEvent("label.execute", "ORD-1", "label", "coordinator", map[string]string{"orderId": "ORD-1"})
	require.NoError(t, err)
	value, err := event.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: "saga.label.commands", Offset: offset, Value: value}
}

func testConsumerConfig() ConsumerConfig {
	return ConsumerConfig{Topic: "saga.label.commands", GroupID: "label-service", MaxRetries: 3, RetryBackoff: time.Millisecond}
}

func TestConsumer_Process_Success(t *testing.T) {
	reader := &fakeReader{}
	var seen []*Event
	c := newConsumer(reader, testConsumerConfig(), func(ctx context.Context, e *Event) error {
		seen = append(seen, e)
		return nil
	}, nil, nil)

	require.NoError(t, c.process(context.Background(), commandMessage(t, 1)))

	require.Len(t, seen, 1)
	assert.Equal(t, "label.execute", seen[0].EventType)
	assert.Equal(t, "ORD-1", seen[0].OrderID)
	require.Len(t, reader.committed, 1)
	assert.Equal(t, int64(1), reader.committed[0].Offset)
}

func TestConsumer_Process_RetriesThenSucceeds(t *testing.T) {
	reader := &fakeReader{}
	calls := 0
	c := newConsumer(reader, testConsumerConfig(), func(ctx context.Context, e *Event) error {
		calls++
		if calls < 3 {
			return errors.New("reply topic unavailable")
		}
		return nil
	}, nil, nil)

	require.NoError(t, c.process(context.Background(), commandMessage(t, 2)))
	assert.Equal(t, 3, calls)
	assert.Len(t, reader.committed, 1)
}

func TestConsumer_Process_ExhaustedGoesToDLQ(t *testing.T) {
	reader := &fakeReader{}
	dlq := &fakeDLQ{}
	calls := 0
	c := newConsumer(reader, testConsumerConfig(), func(ctx context.Context, e *Event) error {
		calls++
		return errors.New("reply topic unavailable")
	}, dlq, nil)

	require.NoError(t, c.process(context.Background(), commandMessage(t, 3)))

	assert.Equal(t, 3, calls)
	require.Len(t, dlq.msgs, 1)
	assert.EqualError(t, dlq.causes[0], "reply topic unavailable")
	assert.Len(t, reader.committed, 1, "poison message must still be committed")
}

func TestConsumer_Process_UndecodableGoesToDLQ(t *testing.T) {
	reader := &fakeReader{}
	dlq := &fakeDLQ{}
	called := false
	c := newConsumer(reader, testConsumerConfig(), func(ctx context.Context, e *Event) error {
		called = true
		return nil
	}, dlq, nil)

	msg := kafka.Message{Topic: "saga.label.commands", Offset: 4, Value: []byte("{not json")}
	require.NoError(t, c.process(context.Background(), msg))

	assert.False(t, called)
	assert.Len(t, dlq.msgs, 1)
	assert.Len(t, reader.committed, 1)
}

func TestConsumer_Process_CancelledDuringBackoff(t *testing.T) {
	reader := &fakeReader{}
	cfg := testConsumerConfig()
	cfg.RetryBackoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())

	c := newConsumer(reader, cfg, func(ctx context.Context, e *Event) error {
		cancel()
		return errors.New("boom")
	}, nil, nil)

	err := c.process(ctx, commandMessage(t, 5))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reader.committed)
}

func TestConsumer_Start_DrainsAndStops(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{commandMessage(t, 10), commandMessage(t, 11)}}

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	handled := 0
	c := newConsumer(reader, testConsumerConfig(), func(ctx context.Context, e *Event) error {
		mu.Lock()
		defer mu.Unlock()
		handled++
		if handled == 2 {
			cancel()
		}
		return nil
	}, nil, nil)

	require.NoError(t, c.Start(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, handled)
	assert.Equal(t, 1, reader.closed)
	assert.NoError(t, c.Close(), "second close is a no-op")
	assert.Equal(t, 1, reader.closed)
}
