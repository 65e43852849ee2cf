// cmd/roundtail is a small consumer that pops round records from the Redis
// round feed and logs them, one line per applied round.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/highcard/internal/cache"
	"github.com/jason-s-yu/highcard/internal/config"
	"github.com/jason-s-yu/highcard/internal/game"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, addr, cfg.RedisDB)
	if err != nil {
		logger.Fatal(err)
	}
	feed := cache.NewRoundFeed(rdb, cfg.RoundQueueName)
	defer feed.Close()

	logger.Infof("Tailing Redis list %s at %s", feed.Queue(), addr)
	for {
		// Use a 3-second wait so that context cancellation is handled.
		rec, err := feed.Next(ctx, 3*time.Second)
		if ctx.Err() != nil {
			logger.Info("roundtail shutting down")
			return
		}
		if err != nil {
			logger.WithError(err).Warn("failed to read round")
			if !errors.Is(err, context.DeadlineExceeded) {
				time.Sleep(time.Second)
			}
			continue
		}
		if rec == nil {
			continue
		}
		logRound(logger, rec)
	}
}

func logRound(logger *logrus.Logger, rec *game.RoundRecord) {
	fields := logrus.Fields{
		"session": rec.SessionID,
		"round":   rec.Round,
		"action":  rec.Action,
		"phase":   rec.Phase,
		"at":      time.UnixMilli(rec.Timestamp).Format(time.RFC3339),
	}
	for _, p := range rec.Players {
		fields["score_"+p.PlayerName] = p.Score
	}
	if rec.Winner != nil {
		fields["winner"] = *rec.Winner
	}
	logger.WithFields(fields).Info("round")
}
