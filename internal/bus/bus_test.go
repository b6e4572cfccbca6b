package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitDispatchesInSubscriptionOrder(t *testing.T) {
	b := New(nil)

	var order []int
	b.On("topic", func(any) { order = append(order, 1) })
	b.On("topic", func(any) { order = append(order, 2) })
	b.On("topic", func(any) { order = append(order, 3) })

	b.Emit("topic", nil)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(nil)

	var calls int
	unsub := b.On("topic", func(any) { calls++ })
	b.Emit("topic", nil)
	unsub()
	b.Emit("topic", nil)

	assert.Equal(t, 1, calls)
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	b := New(nil)

	var reached bool
	b.On("topic", func(any) { panic("boom") })
	b.On("topic", func(any) { reached = true })

	b.Emit("topic", nil)
	assert.True(t, reached, "second handler must still run")
}

func TestLateSubscriberSeesNothing(t *testing.T) {
	b := New(nil)
	b.Emit("topic", "payload")

	var calls int
	b.On("topic", func(any) { calls++ })
	assert.Zero(t, calls, "no replay")
}

func TestEmitIsPerTopic(t *testing.T) {
	b := New(nil)

	var a, c int
	b.On("a", func(any) { a++ })
	b.On("c", func(any) { c++ })

	b.Emit("a", nil)
	assert.Equal(t, 1, a)
	assert.Zero(t, c)
}

func TestPayloadReachesHandler(t *testing.T) {
	b := New(nil)

	var got any
	b.On(TopicCurrencyChanged, func(p any) { got = p })
	b.Emit(TopicCurrencyChanged, CurrencyEvent{Code: "EUR"})

	ev, ok := got.(CurrencyEvent)
	assert.True(t, ok)
	assert.Equal(t, "EUR", ev.Code)
}
