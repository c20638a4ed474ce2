package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Dispatcher delivers due quote requests.
type Dispatcher interface {
	DispatchDue(ctx context.Context) (int, error)
}

// QuoteDispatchWorker forwards pending quote requests to the sales desk periodically.
type QuoteDispatchWorker struct {
	dispatcher Dispatcher
	interval   time.Duration
}

// NewQuoteDispatchWorker constructs a QuoteDispatchWorker.
func NewQuoteDispatchWorker(dispatcher Dispatcher, interval time.Duration) *QuoteDispatchWorker {
	return &QuoteDispatchWorker{
		dispatcher: dispatcher,
		interval:   interval,
	}
}

// Start begins the periodic dispatch loop until context is canceled.
func (w *QuoteDispatchWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting quote dispatch worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Quote dispatch worker stopped")
			return
		}
	}
}

func (w *QuoteDispatchWorker) run(ctx context.Context) {
	n, err := w.dispatcher.DispatchDue(ctx)
	if err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Failed to dispatch quote requests")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("Dispatched quote requests")
	}
}
