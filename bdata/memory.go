package bdata

import (
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/data"
	"git.thinkinpower.net/cardbin/file"
	"git.thinkinpower.net/cardbin/mod"
)

type memoryDatabase struct {
	mu      sync.RWMutex
	dataMap map[string][]mod.BinRecord
	dataDir string

	// offsets of the next unread byte per .bd file
	offsetMu sync.Mutex
	offsets  map[string]int64
	watcher  *file.Watcher
}

func NewMemoryDatabase() BinDatabase {
	return &memoryDatabase{dataMap: make(map[string][]mod.BinRecord), offsets: make(map[string]int64)}
}

func (m *memoryDatabase) Init(cfg BinDataConfig) error {
	if cfg.DataDir == "" {
		return nil
	}
	var (
		filepaths []string
		err       error
	)
	if err = os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return errors.Wrapf(err, "create data dir %s", cfg.DataDir)
	}
	m.dataDir = cfg.DataDir
	if filepaths, err = file.SearchDir(cfg.DataDir, isBinDataFile); err != nil {
		return errors.Wrapf(err, "search data dir %s", cfg.DataDir)
	}
	for _, fp := range filepaths {
		if err = m.load(fp, true); err != nil {
			return err
		}
	}
	logger.WithFields(logger.Fields{"files": len(filepaths), "prefixes": m.Len()}).Info("memory database loaded")

	if cfg.Watch {
		if m.watcher, err = file.Watch(cfg.DataDir, m.onFileEvent); err != nil {
			return errors.Wrapf(err, "watch data dir %s", cfg.DataDir)
		}
	}
	return nil
}

func isBinDataFile(fp string) bool {
	return path.Ext(fp) == binDataFileExt
}

func (m *memoryDatabase) onFileEvent(e file.FileEvent) {
	if !isBinDataFile(e.Filepath) {
		return
	}
	if err := m.load(e.Filepath, e.FileCreated); err != nil {
		logger.Errorf("reload bin data error: %s", err)
	}
}

// load reads fp from its last offset, or from the start when created.
func (m *memoryDatabase) load(fp string, created bool) error {
	m.offsetMu.Lock()
	defer m.offsetMu.Unlock()

	var (
		filedata []string
		offset   int64
		err      error
	)
	if !created {
		offset = m.offsets[fp]
	}
	if filedata, offset, err = read(fp, offset); err != nil {
		return errors.Wrapf(err, "read bin data file %s", fp)
	}
	for _, line := range filedata {
		var records []mod.BinRecord
		if records, err = parse(line); err != nil {
			logger.WithField("file", fp).Errorf("parse bin data error: %s, data: %s", err, line)
			continue
		}
		for _, r := range records {
			m.save2Memory(r.IinStart, r)
		}
	}
	m.offsets[fp] = offset
	return nil
}

func (m *memoryDatabase) Read(prefix string) ([]mod.BinRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if records, ok := m.dataMap[prefix]; ok && len(records) > 0 {
		result := make([]mod.BinRecord, len(records))
		copy(result, records)
		return result, nil
	}
	return nil, ErrNotFound
}

// Save keeps record in memory and appends it to today's data file when a data
// directory is configured.
func (m *memoryDatabase) Save(prefix string, record mod.BinRecord) error {
	if !m.save2Memory(prefix, record) {
		return nil
	}
	if m.dataDir == "" {
		return nil
	}
	date := time.Now().Format(data.DatePatternCompact)
	return write2File(filepath.Join(m.dataDir, date, binDataFileName), record)
}

func (m *memoryDatabase) save2Memory(prefix string, record mod.BinRecord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	records, added := appendRecord(m.dataMap[prefix], record)
	m.dataMap[prefix] = records
	return added
}

func (m *memoryDatabase) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dataMap)
}

func (m *memoryDatabase) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

func write2File(fp string, record mod.BinRecord) error {
	var (
		f   *os.File
		err error
	)
	if err = os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return errors.Wrapf(err, "create dir for %s", fp)
	}
	header := false
	if _, err = os.Stat(fp); err != nil && os.IsNotExist(err) {
		header = true
	}
	if f, err = os.OpenFile(fp, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		return errors.Wrapf(err, "open %s", fp)
	}
	defer f.Close()

	content := format(record) + "\n"
	if header {
		content = binDataHeader + "\n" + content
	}
	if _, err = f.WriteString(content); err != nil {
		return errors.Wrapf(err, "save bin data to %s", fp)
	}
	return nil
}
