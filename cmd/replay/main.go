package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/will-hanabi-bot/go-bot/internal/config"
	"github.com/will-hanabi-bot/go-bot/internal/game"
	"github.com/will-hanabi-bot/go-bot/internal/reactor"
	"github.com/will-hanabi-bot/go-bot/internal/replay"
)

func main() {
	id := flag.Int("id", 0, "remote game id to replay")
	file := flag.String("file", "", "local export file to replay")
	index := flag.Int("index", 0, "seat to simulate")
	turn := flag.Int("turn", 0, "single turn to suggest (0 = every turn of the seat)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cfg := config.LoadAnonymous()
	logger.SetLevel(cfg.LogLevel)
	log := logrus.NewEntry(logger)

	if (*id == 0) == (*file == "") {
		log.Fatal("pass exactly one of -id or -file")
	}

	ctx := context.Background()
	gd, err := load(ctx, cfg, *id, *file, log)
	if err != nil {
		log.WithError(err).Fatal("loading replay")
	}
	if *index < 0 || *index >= len(gd.Players) {
		log.Fatalf("seat %d out of range for %d players", *index, len(gd.Players))
	}

	feed, err := gd.Feed()
	if err != nil {
		log.WithError(err).Fatal("reconstructing feed")
	}

	r := game.NewReplayer(gd.Players, *index, feed, reactor.New(), log)
	if *turn > 0 {
		action, rationale, err := r.Suggest(*turn)
		if err != nil {
			log.WithError(err).Fatal("suggesting")
		}
		g, _ := r.Navigate(*turn)
		fmt.Printf("turn %d: %s (%s)\n", *turn, action.Format(g.State), rationale)
		return
	}

	for t := 1; ; t++ {
		g, err := r.Navigate(t)
		if err != nil {
			break
		}
		if g.State.Ended() || g.State.CurrentPlayerIndex != *index {
			if g.State.Ended() {
				break
			}
			continue
		}
		action, rationale, err := g.Decide()
		if err != nil {
			log.WithError(err).Fatalf("deciding at turn %d", t)
		}
		fmt.Printf("turn %d: %s (%s)\n", t, action.Format(g.State), rationale)
	}
}

// load reads the export from disk or the remote endpoint, with the cache
// wired in when Redis is configured.
func load(ctx context.Context, cfg *config.Config, id int, file string, log *logrus.Entry) (*replay.GameData, error) {
	if file != "" {
		return replay.FromFile(file)
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("bad REDIS_URL: %w", err)
		}
		cache = redis.NewClient(opts)
		defer cache.Close()
	}
	return replay.NewFetcher(cfg.ServerURL, cache, log).Fetch(ctx, id)
}
