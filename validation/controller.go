// Package validation runs card number network detection as the user types: an
// instant local classification for every edit, a debounced remote BIN lookup once
// the BIN is long enough, and a local fallback when the lookup fails.
//
// Every Submit starts a new generation. Only the current generation's results are
// delivered, in the order local result then at most one remote or fallback result.
package validation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/classify"
	"git.thinkinpower.net/cardbin/debounce"
	"git.thinkinpower.net/cardbin/merge"
	"git.thinkinpower.net/cardbin/metrics"
	"git.thinkinpower.net/cardbin/mod"
	"git.thinkinpower.net/cardbin/resolver"
)

// Observer receives results. It is called with delivery serialized and must not
// call Submit synchronously.
type Observer interface {
	OnValidation(result mod.ValidationResult, bin mod.BinData)
}

type ObserverFunc func(result mod.ValidationResult, bin mod.BinData)

func (f ObserverFunc) OnValidation(result mod.ValidationResult, bin mod.BinData) {
	f(result, bin)
}

// FetchObserver is implemented by observers that want to know when a remote
// lookup is about to start.
type FetchObserver interface {
	WillFetch(bin string)
}

const lookupSlot = "bin-lookup"

type generation struct {
	id    uint64
	input string
	bin   string // empty below MinBinLength
	final bool   // remote or fallback result delivered
}

type Controller struct {
	cfg        Config
	classifier classify.Classifier
	cache      *resolver.Cache
	observer   Observer
	debouncer  *debounce.Debouncer
	session    string
	log        *logger.Entry

	ctx    context.Context
	cancel context.CancelFunc

	// deliverMu serializes deliveries; mu guards the generation state.
	deliverMu sync.Mutex
	mu        sync.Mutex
	current   generation
	closed    bool
}

func New(cfg Config, classifier classify.Classifier, upstream resolver.Resolver, observer Observer) *Controller {
	cfg = cfg.normalize()
	if classifier == nil {
		classifier = classify.NewPatternClassifier()
	}
	if observer == nil {
		observer = ObserverFunc(func(mod.ValidationResult, mod.BinData) {})
	}
	session := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:        cfg,
		classifier: classifier,
		cache:      resolver.NewCache(upstream),
		observer:   observer,
		debouncer:  debounce.New(cfg.Debounce),
		session:    session,
		log:        logger.WithFields(logger.Fields{"component": "validation", "session": session}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (c *Controller) Session() string {
	return c.session
}

// Cache exposes the session's BIN memo.
func (c *Controller) Cache() *resolver.Cache {
	return c.cache
}

// Submit validates the current card number digits. The local result is delivered
// before Submit returns.
func (c *Controller) Submit(digits string) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	gen := generation{id: c.current.id + 1, input: digits}
	if len(digits) >= c.cfg.MinBinLength {
		gen.bin = c.binOf(digits)
	}
	c.current = gen
	c.mu.Unlock()

	c.deliverLocked(gen.id, c.localResult(digits, mod.ValidationSourceLocal, gen.bin != ""), false)

	if gen.bin == "" {
		c.debouncer.Cancel(lookupSlot)
		return
	}
	if cached, ok := c.cache.Get(gen.bin); ok {
		c.debouncer.Cancel(lookupSlot)
		metrics.ObserveCacheHit()
		c.finishLocked(gen.bin, cached, nil)
		return
	}
	c.debouncer.Schedule(lookupSlot, func() { c.lookup(gen) })
}

// Close drops pending lookups and stops all further deliveries.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.debouncer.Stop()
	c.cancel()
}

func (c *Controller) binOf(digits string) string {
	if len(digits) > c.cfg.MaxBinLength {
		return digits[:c.cfg.MaxBinLength]
	}
	return digits
}

func (c *Controller) lookup(gen generation) {
	if !c.announceFetch(gen.bin) {
		return
	}
	log := c.log.WithFields(logger.Fields{"generation": gen.id, "bin": gen.bin})
	log.Debug("bin lookup started")

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.LookupTimeout)
	defer cancel()
	res, err := c.cache.Resolve(ctx, gen.bin)
	if err != nil {
		log.WithError(err).Warn("bin lookup failed, falling back to local classification")
	}

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.finishLocked(gen.bin, res, err)
}

// announceFetch notifies a FetchObserver under deliverMu, so the notice is
// serialized with deliveries and only sent while bin is still awaited.
func (c *Controller) announceFetch(bin string) bool {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	if !c.wants(bin) {
		return false
	}
	if fo, ok := c.observer.(FetchObserver); ok {
		fo.WillFetch(bin)
	}
	return true
}

// wants reports whether the current generation still waits for bin.
func (c *Controller) wants(bin string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.current.bin == bin && !c.current.final
}

// finishLocked delivers the outcome of a lookup for bin to the current generation
// when that generation is still waiting for the same BIN. Callers hold deliverMu.
func (c *Controller) finishLocked(bin string, res *mod.BinLookup, err error) {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	if cur.bin != bin || cur.final {
		c.dropStale(cur.id, bin)
		return
	}

	var result mod.ValidationResult
	if err != nil || res == nil || len(res.Networks) == 0 {
		result = c.localResult(bin, mod.ValidationSourceLocalFallback, true)
	} else {
		result = c.remoteResult(bin, res)
	}
	c.deliverLocked(cur.id, result, true)
}

func (c *Controller) deliverLocked(id uint64, result mod.ValidationResult, final bool) {
	c.mu.Lock()
	if c.closed || c.current.id != id || c.current.final {
		c.mu.Unlock()
		c.dropStale(id, result.CardNumber)
		return
	}
	if final {
		c.current.final = true
	}
	c.mu.Unlock()

	result.Generation = id
	metrics.ObserveResult(string(result.Source))
	c.observer.OnValidation(result, Project(result))
}

func (c *Controller) dropStale(id uint64, digits string) {
	metrics.ObserveStale()
	c.log.WithFields(logger.Fields{"current_generation": id, "digits": len(digits)}).Debug("stale result dropped")
}

func (c *Controller) localResult(digits string, source mod.ValidationSource, selection bool) mod.ValidationResult {
	merged := merge.MergeNetworks(c.classifier.Classify(digits), c.cfg.Allowed, c.cfg.Rules)
	result := mod.ValidationResult{
		CardNumber: digits,
		Source:     source,
		DetectedCardNetworks: mod.DetectedNetworks{
			Items:     merged.Detected,
			Preferred: merged.Preferred(),
		},
	}
	if selection {
		result.SelectableCardNetworks = merged.Selectable
		result.AutoSelectedCardNetwork = merged.AutoSelected
	}
	return result
}

func (c *Controller) remoteResult(bin string, res *mod.BinLookup) mod.ValidationResult {
	detected := make([]mod.DetectedNetwork, 0, len(res.Networks))
	for _, r := range res.Networks {
		detected = append(detected, mod.DetectedNetworkFromRecord(r))
	}
	merged := merge.Merge(detected, c.cfg.Allowed, c.cfg.Rules)
	firstDigits := res.FirstDigits
	if firstDigits == "" {
		firstDigits = bin
	}
	return mod.ValidationResult{
		CardNumber: bin,
		Source:     mod.ValidationSourceRemote,
		DetectedCardNetworks: mod.DetectedNetworks{
			Items:     merged.Detected,
			Preferred: merged.Preferred(),
		},
		SelectableCardNetworks:  merged.Selectable,
		AutoSelectedCardNetwork: merged.AutoSelected,
		FirstDigits:             firstDigits,
	}
}
