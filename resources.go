package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Hotel-Concierge/agent/state"
	transcriptx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/transcript"
	configx "github.com/tanpawarit/Chative-Hotel-Concierge/pkg/config"
	postgresx "github.com/tanpawarit/Chative-Hotel-Concierge/pkg/postgres"
	redisx "github.com/tanpawarit/Chative-Hotel-Concierge/pkg/redis"
)

type HistoryConfig struct {
	Backend   string        `envconfig:"BACKEND" split_words:"true" default:"memory"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"concierge"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

type TranscriptConfig struct {
	Dir string `envconfig:"DIR" split_words:"true"`
}

type resources struct {
	store    contractx.HistoryStore
	archiver contractx.Archiver

	redis *goredis.Client
	db    *bun.DB
}

func (r *resources) Close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	if r.db != nil {
		_ = r.db.Close()
	}
}

// openResources picks the history backend and the transcript sinks.
func openResources(ctx context.Context) (*resources, error) {
	historyCfg := configx.MustNew[HistoryConfig]("HISTORY")
	transcriptCfg := configx.MustNew[TranscriptConfig]("TRANSCRIPT")
	postgresCfg := configx.MustNew[postgresx.Config]("TRANSCRIPT")

	res := &resources{}

	switch backend := strings.ToLower(strings.TrimSpace(historyCfg.Backend)); backend {
	case "", "memory":
		res.store = statex.NewMemoryStore()
	case "upstash":
		upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		if !upstashCfg.Enabled() {
			return nil, errors.New("history backend upstash needs UPSTASH_REDIS_URL")
		}
		store, err := statex.NewUpstashRedisStore(*upstashCfg,
			statex.WithKeyPrefix(historyCfg.KeyPrefix+":history:"),
			statex.WithTTL(historyCfg.TTL),
		)
		if err != nil {
			return nil, err
		}
		res.store = store
	case "redis":
		redisCfg := configx.MustNew[redisx.Config]("REDIS")
		if !redisCfg.Enabled() {
			return nil, errors.New("history backend redis needs REDIS_URL")
		}
		client, err := redisx.NewClient(ctx, *redisCfg)
		if err != nil {
			return nil, err
		}
		res.redis = client
		res.store = statex.NewRedisStore(client, historyCfg.KeyPrefix, historyCfg.TTL)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}

	var archivers transcriptx.Multi
	if dir := strings.TrimSpace(transcriptCfg.Dir); dir != "" {
		fileArchiver, err := transcriptx.NewFileArchiver(dir)
		if err != nil {
			res.Close()
			return nil, err
		}
		archivers = append(archivers, fileArchiver)
	}
	if postgresCfg.Enabled() {
		db, err := postgresx.Open(ctx, *postgresCfg)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.db = db
		pgArchiver := transcriptx.NewPostgresArchiver(db)
		if err := pgArchiver.Migrate(ctx); err != nil {
			res.Close()
			return nil, err
		}
		archivers = append(archivers, pgArchiver)
	}
	res.archiver = archivers

	log.Info().
		Str("history_backend", historyCfg.Backend).
		Int("archivers", len(archivers)).
		Msg("resources ready")
	return res, nil
}
