package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"remindbot/internal/app"
	"remindbot/internal/app/consumers"
	"remindbot/internal/app/deps"
	"remindbot/internal/app/services"
	dl "remindbot/internal/core/domain/logging"
	sweepreminders "remindbot/internal/core/services/sweep_reminders"
	"syscall"
	"time"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	log := deps.Logger

	services := services.InitServices(deps)
	shutdownConsumers := consumers.InitConsumers(deps, services)

	// Delivery jobs live in process memory, so a restart drops them. The
	// initial sweep rebuilds them from the store before traffic is served.
	runSweep(deps, services)

	sweepStopCh := make(chan struct{})
	go sweepPeriodically(deps, services, sweepStopCh)

	httpServer := app.InitHttpServer(deps, services)
	go start(httpServer, deps)

	stopCh, closeCh := createChannel()
	defer closeCh()

	<-stopCh
	close(sweepStopCh)
	shutdown(context.Background(), httpServer, deps, shutdownDeps, shutdownConsumers)
	log.Info(context.Background(), "Server has shut down.")
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}

func sweepPeriodically(deps *deps.Deps, services *services.Services, stopCh chan struct{}) {
	ticker := time.NewTicker(deps.Config.SweepPeriod)
	defer ticker.Stop()

	deps.Logger.Info(
		context.Background(),
		"Starting periodic reminder sweep.",
		dl.Entry("periodMinutes", deps.Config.SweepPeriod.Minutes()),
	)
	for {
		select {
		case <-stopCh:
			deps.Logger.Info(context.Background(), "Stopping periodic reminder sweep.")
			return
		case <-ticker.C:
			runSweep(deps, services)
		}
	}
}

func runSweep(deps *deps.Deps, services *services.Services) {
	result, err := services.SweepReminders.Run(context.Background(), sweepreminders.Input{})
	if err != nil {
		deps.Logger.Error(context.Background(), "Sweep service returned an error.", dl.Entry("err", err))
		return
	}
	deps.Logger.Info(
		context.Background(),
		"Reminder sweep finished.",
		dl.Entry("registered", result.Registered),
		dl.Entry("fired", result.Fired),
	)
}

func start(server *http.Server, deps *deps.Deps) {
	deps.Logger.Info(
		context.Background(),
		"HTTP server has started.",
		dl.Entry("address", server.Addr),
		dl.Entry("isTestMode", deps.Config.IsTestMode),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	} else {
		deps.Logger.Info(context.Background(), "HTTP service is stopping gracefully.")
	}
}

func shutdown(
	ctx context.Context,
	server *http.Server,
	deps *deps.Deps,
	shutdownDeps func(),
	shutdownConsumers func(),
) {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error(ctx, "Could not shut down HTTP server.", dl.Entry("err", err))
	}

	shutdownConsumers()
	shutdownDeps()
}
