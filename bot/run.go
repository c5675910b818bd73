package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run opens the gateway, starts the scheduler and blocks until a shutdown
// signal arrives or the bot is closed.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	b.Scheduler.Start()

	b.Logger.Info("bot is now running, press CTRL-C to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sc)

	select {
	case sig := <-sc:
		b.Logger.Info("received signal", zap.String("signal", sig.String()))
	case <-b.done:
	}
	return nil
}
