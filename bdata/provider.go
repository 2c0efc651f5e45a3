package bdata

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/mod"
)

const (
	BinDatabaseModeMemory = "memory"
	BinDatabaseModeRedis  = "redis"

	DefaultMaxBinLength = 8
)

var (
	ErrNotFound     = errors.New("bin not found")
	ErrInvalidBin   = errors.New("invalid bin")
	ErrNotAvailable = errors.New("bin database not initialized")
)

var (
	lock               sync.RWMutex
	config             = BinDataConfig{MaxBinLength: DefaultMaxBinLength}
	currentBinDatabase BinDatabase
)

type BinDataConfig struct {
	DataDir      string
	// Watch reloads .bd files under DataDir when they change.
	Watch        bool
	MaxBinLength int
	RedisAddr    string
}

// BinDatabase stores BIN records keyed by exact prefix.
type BinDatabase interface {
	Init(cfg BinDataConfig) error
	// Read returns the records stored under exactly prefix, or ErrNotFound.
	Read(prefix string) ([]mod.BinRecord, error)
	Save(prefix string, record mod.BinRecord) error
	Close() error
}

func NewBinDatabase(mode string) (BinDatabase, error) {
	switch mode {
	case BinDatabaseModeMemory, "":
		return NewMemoryDatabase(), nil
	case BinDatabaseModeRedis:
		return NewRedisDatabase(nil), nil
	}
	return nil, errors.Errorf("unknown bin database mode %q", mode)
}

// SetBinDatabaseMode creates, initializes and installs the database for mode.
func SetBinDatabaseMode(mode string, cfg BinDataConfig) error {
	var (
		db  BinDatabase
		err error
	)
	if db, err = NewBinDatabase(mode); err != nil {
		return err
	}
	if err = db.Init(cfg); err != nil {
		return errors.Wrapf(err, "init %s bin database", mode)
	}
	UseBinDatabase(db, cfg)
	logger.WithFields(logger.Fields{"mode": mode, "dataDir": cfg.DataDir}).Info("bin database ready")
	return nil
}

// UseBinDatabase installs an already initialized database.
func UseBinDatabase(db BinDatabase, cfg BinDataConfig) {
	if cfg.MaxBinLength <= 0 {
		cfg.MaxBinLength = DefaultMaxBinLength
	}
	lock.Lock()
	defer lock.Unlock()
	currentBinDatabase = db
	config = cfg
}

// Close closes the installed database.
func Close() error {
	lock.Lock()
	db := currentBinDatabase
	currentBinDatabase = nil
	lock.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}

func current() (BinDatabase, BinDataConfig, error) {
	lock.RLock()
	defer lock.RUnlock()
	if currentBinDatabase == nil {
		return nil, config, ErrNotAvailable
	}
	return currentBinDatabase, config, nil
}

// Query answers a BIN lookup with the records of the longest stored prefix of
// bin. FirstDigits is bin truncated to the configured maximum BIN length.
func Query(bin string) (*mod.BinLookup, error) {
	var (
		db      BinDatabase
		cfg     BinDataConfig
		records []mod.BinRecord
		err     error
	)
	if !isDigits(bin) {
		return nil, errors.Wrapf(ErrInvalidBin, "bin %q", bin)
	}
	if db, cfg, err = current(); err != nil {
		return nil, err
	}
	key := bin
	if len(key) > cfg.MaxBinLength {
		key = key[:cfg.MaxBinLength]
	}
	for l := len(key); l > 0; l-- {
		if records, err = db.Read(key[:l]); err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return nil, errors.Wrapf(err, "read prefix %s", key[:l])
		}
		if len(records) == 0 {
			continue
		}
		result := &mod.BinLookup{FirstDigits: key, Networks: make([]mod.RawNetworkRecord, 0, len(records))}
		for _, r := range records {
			result.Networks = append(result.Networks, r.ToRawNetworkRecord())
		}
		return result, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "bin %s", bin)
}

// CreateBinData adds record under bin, which must not exceed the configured
// maximum BIN length. A record for the same network already stored under bin is
// kept and the new one ignored.
func CreateBinData(bin string, record mod.BinRecord) error {
	var (
		db       BinDatabase
		cfg      BinDataConfig
		existing []mod.BinRecord
		err      error
	)
	if !isDigits(bin) {
		return errors.Wrapf(ErrInvalidBin, "bin %q", bin)
	}
	if db, cfg, err = current(); err != nil {
		return err
	}
	//longer keys are never read by Query
	if len(bin) > cfg.MaxBinLength {
		return errors.Wrapf(ErrInvalidBin, "bin longer than %d digits", cfg.MaxBinLength)
	}
	if existing, err = db.Read(bin); err != nil && errors.Cause(err) != ErrNotFound {
		return err
	}
	network := mod.ParseCardNetwork(record.Schema)
	for _, e := range existing {
		if mod.ParseCardNetwork(e.Schema) == network {
			return nil
		}
	}

	record.Id = time.Now().UnixNano()
	record.IinStart = bin
	record.IinEnd = bin
	return db.Save(bin, record)
}

// appendRecord adds record to records unless a record with the same id exists.
func appendRecord(records []mod.BinRecord, record mod.BinRecord) ([]mod.BinRecord, bool) {
	for _, r := range records {
		if r.Id == record.Id {
			return records, false
		}
	}
	return append(records, record), true
}
