package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"dummyapi/internal/dummy/models"
)

const (
	dummyKeyPrefix = "dummy:"
	dummySeqKey    = "dummy:seq"
	dummyIDsKey    = "dummy:ids"
	dniIndexKey    = "dummy:idx:dni"
	emailIndexKey  = "dummy:idx:email"

	// maxTxAttempts bounds optimistic WATCH retries under contention.
	maxTxAttempts = 3
)

// RedisStore keeps one hash per record plus a sorted id set and two unique
// index hashes. Writes run as WATCH/MULTI transactions.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func dummyKey(id models.DummyID) string {
	return dummyKeyPrefix + id.String()
}

// redisDummyRecord is the hash layout of one record. Optional fields are
// absent from the hash when unset; an empty string is a present value.
type redisDummyRecord struct {
	ID        int64  `redis:"id"`
	Name      string `redis:"name"`
	DNI       string `redis:"dni"`
	Email     string `redis:"email"`
	Tel       string `redis:"tel"`
	BirthDate string `redis:"fecha_nac"`
}

func toRecord(d *models.Dummy) map[string]any {
	fields := map[string]any{
		"id":   int64(d.ID),
		"name": d.Name,
	}
	if d.NationalID != nil {
		fields["dni"] = strconv.FormatInt(*d.NationalID, 10)
	}
	if d.Email != nil {
		fields["email"] = *d.Email
	}
	if d.Phone != nil {
		fields["tel"] = strconv.FormatInt(*d.Phone, 10)
	}
	if d.BirthDate != nil {
		fields["fecha_nac"] = d.BirthDate.String()
	}
	return fields
}

func fromRecord(rec redisDummyRecord, fields map[string]string) (*models.Dummy, error) {
	has := func(field string) bool {
		_, ok := fields[field]
		return ok
	}
	d := &models.Dummy{ID: models.DummyID(rec.ID), Name: rec.Name}
	if has("dni") {
		n, err := strconv.ParseInt(rec.DNI, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse dni of dummy %d: %w", rec.ID, err)
		}
		d.NationalID = &n
	}
	if has("email") {
		e := rec.Email
		d.Email = &e
	}
	if has("tel") {
		n, err := strconv.ParseInt(rec.Tel, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse tel of dummy %d: %w", rec.ID, err)
		}
		d.Phone = &n
	}
	if has("fecha_nac") {
		date, err := models.ParseDate(rec.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("parse birth date of dummy %d: %w", rec.ID, err)
		}
		d.BirthDate = &date
	}
	return d, nil
}

// load returns nil, nil when the hash does not exist.
func load(ctx context.Context, c redis.Cmdable, id models.DummyID) (*models.Dummy, error) {
	cmd := c.HGetAll(ctx, dummyKey(id))
	fields, err := cmd.Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	var rec redisDummyRecord
	if err := cmd.Scan(&rec); err != nil {
		return nil, fmt.Errorf("scan dummy %d: %w", id, err)
	}
	return fromRecord(rec, fields)
}

func (s *RedisStore) FindByID(ctx context.Context, id models.DummyID) (*models.Dummy, error) {
	d, err := load(ctx, s.client, id)
	if err != nil {
		return nil, fmt.Errorf("find dummy by id: %w", err)
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

// FindAll returns every record ordered by id.
func (s *RedisStore) FindAll(ctx context.Context) ([]*models.Dummy, error) {
	ids, err := s.client.ZRange(ctx, dummyIDsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list dummy ids: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, 0, len(ids))
	pipe := s.client.Pipeline()
	for _, id := range ids {
		cmds = append(cmds, pipe.HGetAll(ctx, dummyKeyPrefix+id))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("load dummies: %w", err)
		}
	}

	out := make([]*models.Dummy, 0, len(cmds))
	for _, cmd := range cmds {
		if len(cmd.Val()) == 0 {
			// Deleted between ZRANGE and HGETALL.
			continue
		}
		var rec redisDummyRecord
		if err := cmd.Scan(&rec); err != nil {
			return nil, fmt.Errorf("scan dummy: %w", err)
		}
		d, err := fromRecord(rec, cmd.Val())
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Save replaces the record when its id is stored, otherwise inserts it under
// an id drawn from dummy:seq.
func (s *RedisStore) Save(ctx context.Context, d *models.Dummy) (*models.Dummy, error) {
	if err := requireRecord(d); err != nil {
		return nil, err
	}

	var saved *models.Dummy
	err := s.withRetry(ctx, func() error {
		keys := []string{dniIndexKey, emailIndexKey}
		if !d.ID.IsZero() {
			keys = append(keys, dummyKey(d.ID))
		}
		return s.client.Watch(ctx, func(tx *redis.Tx) error {
			rec, err := s.saveTx(ctx, tx, d)
			if err != nil {
				return err
			}
			saved = rec
			return nil
		}, keys...)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *RedisStore) saveTx(ctx context.Context, tx *redis.Tx, d *models.Dummy) (*models.Dummy, error) {
	rec := d.Clone()

	var prev *models.Dummy
	if !rec.ID.IsZero() {
		var err error
		if prev, err = load(ctx, tx, rec.ID); err != nil {
			return nil, fmt.Errorf("load dummy: %w", err)
		}
	}
	if prev == nil {
		next, err := tx.Incr(ctx, dummySeqKey).Result()
		if err != nil {
			return nil, fmt.Errorf("allocate dummy id: %w", err)
		}
		rec.ID = models.DummyID(next)
	}

	if rec.NationalID != nil {
		taken, err := indexedToOther(ctx, tx, dniIndexKey, strconv.FormatInt(*rec.NationalID, 10), rec.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, nationalIDUsed(*rec.NationalID)
		}
	}
	if rec.Email != nil {
		taken, err := indexedToOther(ctx, tx, emailIndexKey, *rec.Email, rec.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, emailUsed(*rec.Email)
		}
	}

	key := dummyKey(rec.ID)
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != nil {
			unindexRedis(ctx, pipe, prev)
		}
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, toRecord(rec))
		pipe.ZAdd(ctx, dummyIDsKey, redis.Z{Score: float64(rec.ID), Member: rec.ID.String()})
		if rec.NationalID != nil {
			pipe.HSet(ctx, dniIndexKey, strconv.FormatInt(*rec.NationalID, 10), rec.ID.String())
		}
		if rec.Email != nil {
			pipe.HSet(ctx, emailIndexKey, *rec.Email, rec.ID.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// indexedToOther reports whether value is indexed to a record other than self.
func indexedToOther(ctx context.Context, tx *redis.Tx, index, value string, self models.DummyID) (bool, error) {
	owner, err := tx.HGet(ctx, index, value).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", index, err)
	}
	return owner != self.String(), nil
}

func unindexRedis(ctx context.Context, pipe redis.Pipeliner, d *models.Dummy) {
	if d.NationalID != nil {
		pipe.HDel(ctx, dniIndexKey, strconv.FormatInt(*d.NationalID, 10))
	}
	if d.Email != nil {
		pipe.HDel(ctx, emailIndexKey, *d.Email)
	}
}

func (s *RedisStore) Delete(ctx context.Context, id models.DummyID) error {
	key := dummyKey(id)
	return s.withRetry(ctx, func() error {
		return s.client.Watch(ctx, func(tx *redis.Tx) error {
			prev, err := load(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("load dummy: %w", err)
			}
			if prev == nil {
				return ErrNotFound
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				unindexRedis(ctx, pipe, prev)
				pipe.Del(ctx, key)
				pipe.ZRem(ctx, dummyIDsKey, id.String())
				return nil
			})
			return err
		}, key, dniIndexKey, emailIndexKey)
	})
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, dummyIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count dummies: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for range maxTxAttempts {
		err = fn()
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("dummy transaction contended after %d attempts: %w", maxTxAttempts, err)
}
