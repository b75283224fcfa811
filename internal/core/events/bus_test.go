package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var (
		bus *events.EventBus
		ctx context.Context
	)

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		ctx = context.Background()
	})

	terminated := func() events.Event {
		return events.NewGuardTerminatedEvent("g1", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	}

	It("runs handlers in registration order", func() {
		var order []string
		bus.Subscribe(events.EventTypeGuardTerminated, func(context.Context, events.Event) error {
			order = append(order, "first")
			return nil
		})
		bus.Subscribe(events.EventTypeGuardTerminated, func(context.Context, events.Event) error {
			order = append(order, "second")
			return nil
		})

		Expect(bus.PublishSync(ctx, terminated())).To(Succeed())
		Expect(order).To(Equal([]string{"first", "second"}))
	})

	It("keeps running after a handler fails and reports every failure", func() {
		downstream := errors.New("downstream failed")
		reached := false
		bus.Subscribe(events.EventTypeGuardTerminated, func(context.Context, events.Event) error {
			return downstream
		})
		bus.Subscribe(events.EventTypeGuardTerminated, func(context.Context, events.Event) error {
			reached = true
			return nil
		})

		err := bus.PublishSync(ctx, terminated())
		Expect(err).To(MatchError(downstream))
		Expect(reached).To(BeTrue())
	})

	It("ignores events nobody subscribed to", func() {
		Expect(bus.PublishSync(ctx, terminated())).To(Succeed())
	})
})
