// Package metrics exposes connection pool gauges for the configured backends.
package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Pool holds gauges describing database and Redis connection pools.
type Pool struct {
	DBOpenConns    prometheus.Gauge
	DBInUse        prometheus.Gauge
	DBIdle         prometheus.Gauge
	DBWaitCount    prometheus.Gauge
	RedisTotal     prometheus.Gauge
	RedisIdle      prometheus.Gauge
	RedisHits      prometheus.Gauge
	RedisMisses    prometheus.Gauge
	RedisTimeouts  prometheus.Gauge
	RedisStaleConn prometheus.Gauge
}

// NewPool registers the pool gauges against reg (default registry when nil).
func NewPool(reg prometheus.Registerer) *Pool {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	}
	return &Pool{
		DBOpenConns:    gauge("dummy_db_open_connections", "Open connections in the database pool"),
		DBInUse:        gauge("dummy_db_in_use_connections", "Database connections currently in use"),
		DBIdle:         gauge("dummy_db_idle_connections", "Idle database connections"),
		DBWaitCount:    gauge("dummy_db_wait_count", "Cumulative waits for a database connection"),
		RedisTotal:     gauge("dummy_redis_pool_total_conns", "Connections in the Redis pool"),
		RedisIdle:      gauge("dummy_redis_pool_idle_conns", "Idle connections in the Redis pool"),
		RedisHits:      gauge("dummy_redis_pool_hits", "Cumulative times a free Redis connection was found"),
		RedisMisses:    gauge("dummy_redis_pool_misses", "Cumulative times a Redis connection had to be dialed"),
		RedisTimeouts:  gauge("dummy_redis_pool_timeouts", "Cumulative Redis pool wait timeouts"),
		RedisStaleConn: gauge("dummy_redis_pool_stale_conns", "Cumulative stale Redis connections removed"),
	}
}

func (p *Pool) ObserveDB(s sql.DBStats) {
	p.DBOpenConns.Set(float64(s.OpenConnections))
	p.DBInUse.Set(float64(s.InUse))
	p.DBIdle.Set(float64(s.Idle))
	p.DBWaitCount.Set(float64(s.WaitCount))
}

func (p *Pool) ObserveRedis(s *redis.PoolStats) {
	if s == nil {
		return
	}
	p.RedisTotal.Set(float64(s.TotalConns))
	p.RedisIdle.Set(float64(s.IdleConns))
	p.RedisHits.Set(float64(s.Hits))
	p.RedisMisses.Set(float64(s.Misses))
	p.RedisTimeouts.Set(float64(s.Timeouts))
	p.RedisStaleConn.Set(float64(s.StaleConns))
}
