package inmemdb

import (
	"context"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
)

type settingRepository struct {
	db *DB
}

var _ setting.Repository = (*settingRepository)(nil)

func NewSettingRepository(db *DB) *settingRepository {
	return &settingRepository{db: db}
}

func (repo *settingRepository) QuerySettings(_ context.Context) ([]setting.Setting, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	settings := make([]setting.Setting, 0, len(repo.db.settings))
	for _, s := range repo.db.settings {
		settings = append(settings, s)
	}
	return settings, nil
}

func (repo *settingRepository) SaveSetting(_ context.Context, s setting.Setting) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.settings[s.Key] = s
	return nil
}
