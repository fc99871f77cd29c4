package server

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type dbPinger struct{ db *sqlx.DB }

func DBPinger(db *sqlx.DB) Pinger { return dbPinger{db: db} }

func (p dbPinger) Name() string { return "database" }

func (p dbPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

type redisPinger struct{ rdb *redis.Client }

func RedisPinger(rdb *redis.Client) Pinger { return redisPinger{rdb: rdb} }

func (p redisPinger) Name() string { return "redis" }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }
