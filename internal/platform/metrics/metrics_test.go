package metrics

import (
	"database/sql"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestPoolObserve(t *testing.T) {
	p := NewPool(prometheus.NewRegistry())

	p.ObserveDB(sql.DBStats{OpenConnections: 4, InUse: 3, Idle: 1, WaitCount: 7})
	p.ObserveRedis(&redis.PoolStats{TotalConns: 10, IdleConns: 2, Hits: 5})
	p.ObserveRedis(nil)

	assert.Equal(t, 4.0, testutil.ToFloat64(p.DBOpenConns))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.DBInUse))
	assert.Equal(t, 7.0, testutil.ToFloat64(p.DBWaitCount))
	assert.Equal(t, 10.0, testutil.ToFloat64(p.RedisTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(p.RedisHits))
}
