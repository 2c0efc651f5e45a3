package bdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/file"
	"git.thinkinpower.net/cardbin/mod"
)

const (
	redisKeyPrefix = "bin:"
	redisTimeout   = 3 * time.Second
)

// RedisKV is the subset of redis used by the redis database. Get returns
// ErrNotFound for a missing key.
type RedisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

type goRedisKV struct {
	client *redis.Client
}

func newGoRedisKV(addr string) *goRedisKV {
	return &goRedisKV{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (g *goRedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := g.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return value, err
}

func (g *goRedisKV) Set(ctx context.Context, key, value string) error {
	return g.client.Set(ctx, key, value, 0).Err()
}

func (g *goRedisKV) Close() error {
	return g.client.Close()
}

// redisDatabase stores the records of a prefix as a JSON list under bin:<prefix>.
type redisDatabase struct {
	kv RedisKV
	// serializes read-modify-write of a key within this process
	mu sync.Mutex
}

// NewRedisDatabase uses kv, or dials cfg.RedisAddr on Init when kv is nil.
func NewRedisDatabase(kv RedisKV) BinDatabase {
	return &redisDatabase{kv: kv}
}

func (r *redisDatabase) Init(cfg BinDataConfig) error {
	if r.kv == nil {
		g := newGoRedisKV(cfg.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		if err := g.client.Ping(ctx).Err(); err != nil {
			g.client.Close()
			return errors.Wrapf(err, "connect redis %s", cfg.RedisAddr)
		}
		r.kv = g
	}
	if cfg.DataDir == "" {
		return nil
	}
	return r.importDir(cfg.DataDir)
}

// importDir seeds redis with the .bd files under dir.
func (r *redisDatabase) importDir(dir string) error {
	var (
		filepaths []string
		err       error
	)
	if filepaths, err = file.SearchDir(dir, isBinDataFile); err != nil {
		return errors.Wrapf(err, "search data dir %s", dir)
	}
	count := 0
	for _, fp := range filepaths {
		var filedata []string
		if filedata, _, err = read(fp, 0); err != nil {
			return errors.Wrapf(err, "read bin data file %s", fp)
		}
		for _, line := range filedata {
			var records []mod.BinRecord
			if records, err = parse(line); err != nil {
				logger.WithField("file", fp).Errorf("parse bin data error: %s, data: %s", err, line)
				continue
			}
			for _, record := range records {
				if err = r.Save(record.IinStart, record); err != nil {
					return err
				}
				count++
			}
		}
	}
	logger.WithFields(logger.Fields{"files": len(filepaths), "records": count}).Info("redis database seeded")
	return nil
}

func (r *redisDatabase) Read(prefix string) ([]mod.BinRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return r.read(ctx, prefix)
}

func (r *redisDatabase) read(ctx context.Context, prefix string) ([]mod.BinRecord, error) {
	var (
		value   string
		records []mod.BinRecord
		err     error
	)
	if value, err = r.kv.Get(ctx, redisKeyPrefix+prefix); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "redis get %s", prefix)
	}
	if err = json.Unmarshal([]byte(value), &records); err != nil {
		return nil, errors.Wrapf(err, "decode records of %s", prefix)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

func (r *redisDatabase) Save(prefix string, record mod.BinRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	records, err := r.read(ctx, prefix)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return err
	}
	var added bool
	if records, added = appendRecord(records, record); !added {
		return nil
	}
	value, err := json.Marshal(records)
	if err != nil {
		return errors.Wrapf(err, "encode records of %s", prefix)
	}
	if err = r.kv.Set(ctx, redisKeyPrefix+prefix, string(value)); err != nil {
		return errors.Wrapf(err, "redis set %s", prefix)
	}
	return nil
}

func (r *redisDatabase) Close() error {
	if r.kv == nil {
		return nil
	}
	return r.kv.Close()
}
