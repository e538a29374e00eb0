package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Подменяются в тестах.
var (
	signalNotify = signal.Notify
	signalStop   = signal.Stop
)

// SetupGracefulShutdown устанавливает обработчик SIGINT/SIGTERM.
//
// При первом сигнале отменяется контекст: текущий HTTP запрос прерывается,
// фазы прогона видят ctx.Err() и выходят. Обработчик сразу снимается,
// поэтому второй Ctrl+C завершает процесс принудительно. Возвращает функцию, которую
// следует вызвать через defer: она снимает обработчик и закрывает лог.
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer SetupGracefulShutdown(cancel)()
func SetupGracefulShutdown(cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 1)
	signalNotify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
			signalStop(sigChan)
		case <-done:
		}
	}()

	return func() {
		signalStop(sigChan)
		close(done)
		Close()
	}
}

// SetupGracefulShutdownWithContext создаёт контекст и настраивает graceful shutdown.
//
//	ctx, shutdown := SetupGracefulShutdownWithContext()
//	defer shutdown()
func SetupGracefulShutdownWithContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	shutdown := SetupGracefulShutdown(cancel)
	return ctx, func() {
		shutdown()
		cancel()
	}
}
