package setting

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

type storeMock struct {
	*store
}

func NewStoreMock(repo Repository, logger core.Logger, validate *validator.Validate, translator ut.Translator) Store {
	return &storeMock{store: newStore(repo, logger, validate, translator)}
}

func (s *storeMock) Set(us UpdateSetting) (Setting, error) {
	st, version, err := s.update(us)
	if err != nil {
		return Setting{}, err
	}
	// run synchronously
	s.persist(st, version)
	return st, nil
}
