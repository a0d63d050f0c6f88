// Package inmemdb implements the repositories with mutex-guarded maps.
// It backs the tests and the API's in-memory dev mode.
package inmemdb

import (
	"sync"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
)

type DB struct {
	mu           sync.RWMutex
	examiners    map[string]examiner.Examiner
	photos       map[string]examiner.Photo
	calculations map[string]calculation.Calculation
	documents    map[string]calculation.LegacyDocument
	settings     map[setting.Key]setting.Setting
}

func Open() *DB {
	db := &DB{}
	db.Reset()
	return db
}

// Reset drops all the data.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.examiners = make(map[string]examiner.Examiner)
	db.photos = make(map[string]examiner.Photo)
	db.calculations = make(map[string]calculation.Calculation)
	db.documents = make(map[string]calculation.LegacyDocument)
	db.settings = make(map[setting.Key]setting.Setting)
}
