package verdictStore

import (
	"context"

	"github.com/Layr-Labs/txguard/pkg/eventBus/eventBusTypes"
	"github.com/Layr-Labs/txguard/pkg/gatekeeper"
	"go.uber.org/zap"
)

const recorderConsumerId eventBusTypes.ConsumerId = "verdictRecorder"

// VerdictRecorder persists verdicts published on the event bus. Persistence is best effort; a
// failed insert is logged and never changes a verdict.
type VerdictRecorder struct {
	store    *VerdictStore
	eventBus eventBusTypes.IEventBus
	logger   *zap.Logger
	bufSize  int
}

func NewVerdictRecorder(store *VerdictStore, eb eventBusTypes.IEventBus, bufSize int, l *zap.Logger) *VerdictRecorder {
	if bufSize <= 0 {
		bufSize = 1024
	}
	return &VerdictRecorder{
		store:    store,
		eventBus: eb,
		logger:   l,
		bufSize:  bufSize,
	}
}

// Start subscribes and drains events until ctx is done. The returned channel closes once the
// recorder has unsubscribed.
func (r *VerdictRecorder) Start(ctx context.Context) <-chan struct{} {
	consumer := &eventBusTypes.Consumer{
		Id:      recorderConsumerId,
		Context: ctx,
		Channel: make(chan *eventBusTypes.Event, r.bufSize),
	}
	r.eventBus.Subscribe(consumer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer r.eventBus.Unsubscribe(consumer)

		for {
			select {
			case <-ctx.Done():
				r.logger.Sugar().Infow("Stopping verdict recorder")
				return
			case event := <-consumer.Channel:
				r.handleEvent(event)
			}
		}
	}()
	return done
}

func (r *VerdictRecorder) handleEvent(event *eventBusTypes.Event) {
	if event == nil {
		return
	}
	if event.Name != eventBusTypes.Event_VerdictApproved && event.Name != eventBusTypes.Event_VerdictRejected {
		return
	}
	verdict, ok := event.Data.(*gatekeeper.Verdict)
	if !ok {
		r.logger.Sugar().Warnw("Unexpected verdict event payload", zap.String("eventName", event.Name))
		return
	}
	if _, err := r.store.InsertVerdict(verdict); err != nil {
		r.logger.Sugar().Errorw("Failed to record verdict",
			zap.String("verdictId", verdict.Id.String()),
			zap.Error(err),
		)
	}
}
