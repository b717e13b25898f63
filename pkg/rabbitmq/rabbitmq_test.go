package rabbitmq

import (
	"errors"
	"sync"
	"testing"
	"time"

	"looplane/internal/logging"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  []string
	queues     []string
	bindings   []string
	published  []amqp.Publishing
	keys       []string
	deliveries chan amqp.Delivery
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.exchanges = append(f.exchanges, name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.queues = append(f.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.bindings = append(f.bindings, exchange+"->"+name+"@"+key)
	return nil
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeAcknowledger struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}

func TestNewClient_DeclaresListingTopology(t *testing.T) {
	ch := &fakeChannel{}
	_, err := newClient(ch, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, []string{"listings:topic"}, ch.exchanges)
	assert.Equal(t, []string{"listing_events"}, ch.queues)
	assert.Equal(t, []string{"listings->listing_events@listing.*"}, ch.bindings)
}

func TestPublish_PersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	c, err := newClient(ch, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, c.Publish(ListingsExchange, EventListingCreated, []byte(`{"type":"listing.created"}`)))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "listings/listing.created", ch.keys[0])
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.JSONEq(t, `{"type":"listing.created"}`, string(ch.published[0].Body))
}

func TestPublish_ReportsBrokerFailure(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	c, err := newClient(ch, logging.Discard())
	require.NoError(t, err)

	err = c.Publish(ListingsExchange, EventListingDeleted, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing.deleted")
}

func TestConsumeListingEvents_AcksAndNacks(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 2)}
	c, err := newClient(ch, logging.Discard())
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, RoutingKey: EventListingCreated, Body: []byte("ok")}
	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, RoutingKey: EventListingUpdated, Body: []byte("bad")}
	close(ch.deliveries)

	err = c.ConsumeListingEvents(func(msg amqp.Delivery) error {
		if string(msg.Body) == "bad" {
			return errors.New("cannot process")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ack.mu.Lock()
		defer ack.mu.Unlock()
		return len(ack.acked) == 1 && len(ack.nacked) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
}

func TestClose_ClosesChannel(t *testing.T) {
	ch := &fakeChannel{}
	c, err := newClient(ch, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.True(t, ch.closed)
}
