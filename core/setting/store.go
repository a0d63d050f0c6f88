package setting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

type Key string

const (
	Theme                Key = "theme"
	PDFSaveLocation      Key = "pdfSaveLocation"
	EvaluationRate       Key = "evaluationRate"
	DefaultViewHistory   Key = "defaultViewHistory"
	DefaultViewDashboard Key = "defaultViewDashboard"
)

var (
	Keys = []Key{Theme, PDFSaveLocation, EvaluationRate, DefaultViewHistory, DefaultViewDashboard}

	Defaults = map[Key]string{
		Theme:                "light",
		PDFSaveLocation:      "downloads",
		EvaluationRate:       "20",
		DefaultViewHistory:   "table",
		DefaultViewDashboard: "grid",
	}

	// allowed values; keys not listed accept any non-blank value
	choices = map[Key][]string{
		Theme:                {"light", "dark", "system"},
		DefaultViewHistory:   {"table", "grid"},
		DefaultViewDashboard: {"table", "grid"},
	}

	persistTimeout = 10 * time.Second
)

type (
	Setting struct {
		Key       Key       `json:"key"`
		Value     string    `json:"value"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	UpdateSetting struct {
		Key   string `json:"key" validate:"required,setting_key"`
		Value string `json:"value" validate:"required,notblank,max=255"`
	}

	Repository interface {
		QuerySettings(ctx context.Context) ([]Setting, error)
		// SaveSetting inserts or replaces the setting.
		SaveSetting(ctx context.Context, s Setting) error
	}

	Store interface {
		// Load fills the cache from the repository. Keys absent from storage keep their defaults.
		Load(ctx context.Context)
		Get(key Key) string
		All() []Setting
		EvaluationRate() decimal.Decimal
		// Set updates the cached value and persists it in the background.
		Set(us UpdateSetting) (Setting, error)
		// Wait blocks until pending writes are done.
		Wait()
	}

	store struct {
		repo       Repository
		logger     core.Logger
		validate   *validator.Validate
		translator ut.Translator

		mu       sync.RWMutex
		cache    map[Key]Setting
		versions map[Key]uint64 // bumped by every update
		writeMu  sync.Mutex     // serialises SaveSetting calls
		pending  sync.WaitGroup
	}
)

var _ Store = (*store)(nil)

func NewStore(repo Repository, logger core.Logger, validate *validator.Validate, translator ut.Translator) Store {
	return newStore(repo, logger, validate, translator)
}

func newStore(repo Repository, logger core.Logger, validate *validator.Validate, translator ut.Translator) *store {
	s := &store{
		repo:       repo,
		logger:     logger,
		validate:   validate,
		translator: translator,
		cache:      make(map[Key]Setting, len(Keys)),
		versions:   make(map[Key]uint64, len(Keys)),
	}
	for _, key := range Keys {
		s.cache[key] = Setting{Key: key, Value: Defaults[key]}
	}
	return s
}

func (s *store) Load(ctx context.Context) {
	settings, err := s.repo.QuerySettings(ctx)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("loading settings, using defaults: %v", err), err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range settings {
		if IsKey(string(st.Key)) && validValue(st.Key, st.Value) {
			s.cache[st.Key] = st
		}
	}
}

func (s *store) Get(key Key) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[key].Value
}

func (s *store) All() []Setting {
	s.mu.RLock()
	settings := make([]Setting, 0, len(s.cache))
	for _, st := range s.cache {
		settings = append(settings, st)
	}
	s.mu.RUnlock()

	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings
}

func (s *store) EvaluationRate() decimal.Decimal {
	rate, err := decimal.NewFromString(s.Get(EvaluationRate))
	if err != nil || !rate.IsPositive() {
		return decimal.RequireFromString(Defaults[EvaluationRate])
	}
	return rate
}

// update caches the new value and returns it with its version.
func (s *store) update(us UpdateSetting) (Setting, uint64, error) {
	if err := us.Validate(s.validate, s.translator); err != nil {
		return Setting{}, 0, err
	}

	st := Setting{Key: Key(us.Key), Value: us.Value, UpdatedAt: time.Now().UTC()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[st.Key] = st
	s.versions[st.Key]++
	return st, s.versions[st.Key], nil
}

func (s *store) Set(us UpdateSetting) (Setting, error) {
	st, version, err := s.update(us)
	if err != nil {
		return Setting{}, err
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.persist(st, version)
	}()
	return st, nil
}

func (s *store) isCurrent(key Key, version uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[key] == version
}

// persist saves st unless a newer update of the same key was made meanwhile.
// Saves never overlap, so the newest value is always the last one written.
func (s *store) persist(st Setting, version uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if !s.isCurrent(st.Key, version) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.repo.SaveSetting(ctx, st); err != nil {
		s.logger.Error(fmt.Sprintf("persisting setting %q", st.Key), errors.Wrap(err, "saving setting"))
	}
}

func (s *store) Wait() {
	s.pending.Wait()
}

// IsKey reports whether key is a known setting key.
func IsKey(key string) bool {
	for _, k := range Keys {
		if string(k) == key {
			return true
		}
	}
	return false
}

func validValue(key Key, value string) bool {
	if key == EvaluationRate {
		rate, err := decimal.NewFromString(value)
		return err == nil && rate.IsPositive()
	}
	allowed, ok := choices[key]
	if !ok {
		return true
	}
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}
