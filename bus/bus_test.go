// ABOUTME: Tests for the synchronous event bus.
// ABOUTME: Covers delivery order, wildcard taps, and panic containment.

package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_Publish_DeliversInSubscriptionOrder(t *testing.T) {
	b := New(nil)

	var order []string
	b.Subscribe("MESSAGE_CREATE", func(ev Event) {
		order = append(order, "first")
	})
	b.Subscribe("MESSAGE_CREATE", func(ev Event) {
		order = append(order, "second")
	})
	b.Subscribe("GUILD_CREATE", func(ev Event) {
		order = append(order, "wrong-event")
	})

	b.Publish(Event{Name: "MESSAGE_CREATE", Payload: []byte(`{}`)})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_Publish_WildcardSeesEveryEvent(t *testing.T) {
	b := New(nil)

	var seen []string
	b.SubscribeAll(func(ev Event) {
		seen = append(seen, ev.Name)
	})

	b.Publish(Event{Name: "READY"})
	b.Publish(Event{Name: "MESSAGE_CREATE"})

	assert.Equal(t, []string{"READY", "MESSAGE_CREATE"}, seen)
}

func TestBus_Publish_WildcardRunsAfterNamed(t *testing.T) {
	b := New(nil)

	var order []string
	b.SubscribeAll(func(ev Event) {
		order = append(order, "wildcard")
	})
	b.Subscribe("READY", func(ev Event) {
		order = append(order, "named")
	})

	b.Publish(Event{Name: "READY"})

	assert.Equal(t, []string{"named", "wildcard"}, order)
}

func TestBus_Publish_PanicDoesNotStopDelivery(t *testing.T) {
	b := New(nil)

	delivered := false
	b.Subscribe("READY", func(ev Event) {
		panic("subscriber bug")
	})
	b.Subscribe("READY", func(ev Event) {
		delivered = true
	})

	assert.NotPanics(t, func() {
		b.Publish(Event{Name: "READY"})
	})
	assert.True(t, delivered)
}

func TestBus_Publish_NoSubscribersIsNoOp(t *testing.T) {
	b := New(nil)
	assert.NotPanics(t, func() {
		b.Publish(Event{Name: "UNSEEN"})
	})
}
