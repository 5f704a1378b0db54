package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGTERM, syscall.SIGINT)

	return gracefulShutdown
}

// ListenForShutdown blocks until SIGTERM/SIGINT arrives, runs every handler in order, waits
// timeToWait for in-flight requests to drain and then closes done.
func ListenForShutdown(
	signalChan chan os.Signal,
	done chan bool,
	timeToWait time.Duration,
	l *zap.Logger,
	handlers ...func(),
) {
	sig := <-signalChan
	switch sig {
	case syscall.SIGTERM, syscall.SIGINT:
		l.Sugar().Infow("Caught signal", zap.String("signal", sig.String()))

		for _, handler := range handlers {
			handler()
		}

		if timeToWait > 0 {
			l.Sugar().Infow("Waiting before exit", zap.Duration("wait", timeToWait))
			time.Sleep(timeToWait)
		}

		l.Sugar().Infow("Exiting")
	}
	close(done)
}
