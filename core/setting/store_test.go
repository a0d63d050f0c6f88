package setting_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
	inmemdb "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/inmem"
	testutil "github.com/Melvinkheturus/examinerpro-web-sub001/tests"
)

var errStorage = errors.New("relation \"settings\" does not exist")

// failingRepo fails every call.
type failingRepo struct {
	mu    sync.Mutex
	saves int
}

func (r *failingRepo) QuerySettings(context.Context) ([]setting.Setting, error) {
	return nil, errStorage
}

func (r *failingRepo) SaveSetting(context.Context, setting.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	return errStorage
}

// recordingLogger keeps the messages of warnings & errors.
type recordingLogger struct {
	core.Logger
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) Warn(msg string, _ ...interface{}) { l.record(msg) }

func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.record(msg) }

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func TestStore_Defaults(t *testing.T) {
	validate, translator := testutil.NewValidator()
	logger := &recordingLogger{Logger: testutil.NewLogger()}
	store := setting.NewStore(&failingRepo{}, logger, validate, translator)
	store.Load(context.Background())

	assert.Equal(t, "light", store.Get(setting.Theme))
	assert.Equal(t, "downloads", store.Get(setting.PDFSaveLocation))
	assert.Equal(t, "20", store.Get(setting.EvaluationRate))
	assert.Equal(t, "table", store.Get(setting.DefaultViewHistory))
	assert.Equal(t, "grid", store.Get(setting.DefaultViewDashboard))
	assert.True(t, store.EvaluationRate().Equal(decimal.NewFromInt(20)))
	assert.Len(t, store.All(), len(setting.Keys))
	assert.Len(t, logger.Messages(), 1)
}

func TestStore_Load(t *testing.T) {
	validate, translator := testutil.NewValidator()
	db := inmemdb.Open()
	repo := inmemdb.NewSettingRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.SaveSetting(ctx, setting.Setting{Key: setting.Theme, Value: "dark"}))
	require.NoError(t, repo.SaveSetting(ctx, setting.Setting{Key: setting.EvaluationRate, Value: "-3"}))
	require.NoError(t, repo.SaveSetting(ctx, setting.Setting{Key: "fontSize", Value: "12"}))

	store := setting.NewStore(repo, testutil.NewLogger(), validate, translator)
	store.Load(ctx)

	assert.Equal(t, "dark", store.Get(setting.Theme))
	// invalid stored values keep their defaults
	assert.Equal(t, "20", store.Get(setting.EvaluationRate))
	assert.Equal(t, "", store.Get("fontSize"))

	keys := make([]setting.Key, 0)
	for _, s := range store.All() {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []setting.Key{
		setting.DefaultViewDashboard, setting.DefaultViewHistory, setting.EvaluationRate, setting.PDFSaveLocation, setting.Theme,
	}, keys)
}

func TestStore_Set(t *testing.T) {
	validate, translator := testutil.NewValidator()
	db := inmemdb.Open()
	repo := inmemdb.NewSettingRepository(db)
	store := setting.NewStore(repo, testutil.NewLogger(), validate, translator)

	st, err := store.Set(setting.UpdateSetting{Key: "evaluationRate", Value: " 22.5 "})
	require.NoError(t, err)
	assert.Equal(t, "22.5", st.Value)
	assert.False(t, st.UpdatedAt.IsZero())
	assert.Equal(t, "22.5", store.Get(setting.EvaluationRate))
	assert.True(t, store.EvaluationRate().Equal(decimal.RequireFromString("22.5")))

	store.Wait()
	stored, err := repo.QuerySettings(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, st, stored[0])

	tests := []struct {
		name   string
		us     setting.UpdateSetting
		fields []core.FieldError
	}{
		{name: "unknown key", us: setting.UpdateSetting{Key: "fontSize", Value: "12"}, fields: []core.FieldError{{Field: "key", Error: "unknown setting"}}},
		{name: "blank value", us: setting.UpdateSetting{Key: "theme", Value: "  "}, fields: []core.FieldError{{Field: "value", Error: "this field is required"}}},
		{name: "bad choice", us: setting.UpdateSetting{Key: "theme", Value: "pink"}, fields: []core.FieldError{{Field: "value", Error: "invalid value for this setting"}}},
		{name: "bad rate", us: setting.UpdateSetting{Key: "evaluationRate", Value: "abc"}, fields: []core.FieldError{{Field: "value", Error: "invalid value for this setting"}}},
		{name: "zero rate", us: setting.UpdateSetting{Key: "evaluationRate", Value: "0"}, fields: []core.FieldError{{Field: "value", Error: "invalid value for this setting"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Set(tt.us)
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "got %T: %v", err, err)
			assert.Equal(t, tt.fields, vErr.Fields)
		})
	}
	assert.Equal(t, "light", store.Get(setting.Theme))
}

func TestStore_SetPersistenceFailure(t *testing.T) {
	validate, translator := testutil.NewValidator()
	repo := &failingRepo{}
	logger := &recordingLogger{Logger: testutil.NewLogger()}
	store := setting.NewStore(repo, logger, validate, translator)

	var wg sync.WaitGroup
	for _, theme := range []string{"dark", "system", "light", "dark"} {
		wg.Add(1)
		go func(theme string) {
			defer wg.Done()
			_, err := store.Set(setting.UpdateSetting{Key: "theme", Value: theme})
			assert.NoError(t, err)
		}(theme)
	}
	wg.Wait()
	store.Wait()

	assert.Contains(t, []string{"dark", "system", "light"}, store.Get(setting.Theme))
	// superseded writes are skipped; every attempted one is logged
	assert.GreaterOrEqual(t, repo.saves, 1)
	assert.LessOrEqual(t, repo.saves, 4)
	assert.Len(t, logger.Messages(), repo.saves)
}

// slowRepo delays the saves of one value.
type slowRepo struct {
	setting.Repository
	slowValue string
	delay     time.Duration
}

func (r *slowRepo) SaveSetting(ctx context.Context, st setting.Setting) error {
	if st.Value == r.slowValue {
		time.Sleep(r.delay)
	}
	return r.Repository.SaveSetting(ctx, st)
}

func TestStore_SetKeepsLastValue(t *testing.T) {
	validate, translator := testutil.NewValidator()
	repo := &slowRepo{
		Repository: inmemdb.NewSettingRepository(inmemdb.Open()),
		slowValue:  "dark",
		delay:      100 * time.Millisecond,
	}
	store := setting.NewStore(repo, testutil.NewLogger(), validate, translator)

	_, err := store.Set(setting.UpdateSetting{Key: "theme", Value: "dark"})
	require.NoError(t, err)
	_, err = store.Set(setting.UpdateSetting{Key: "theme", Value: "system"})
	require.NoError(t, err)
	store.Wait()
	assert.Equal(t, "system", store.Get(setting.Theme))

	restarted := setting.NewStore(repo, testutil.NewLogger(), validate, translator)
	restarted.Load(context.Background())
	assert.Equal(t, "system", restarted.Get(setting.Theme))
}

func TestIsKey(t *testing.T) {
	for _, key := range setting.Keys {
		assert.True(t, setting.IsKey(string(key)))
	}
	assert.False(t, setting.IsKey("Theme"))
	assert.False(t, setting.IsKey(""))
}
