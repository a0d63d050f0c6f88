package report

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	appfs "github.com/Melvinkheturus/examinerpro-web-sub001/fs"
)

var defaultLetterheadPath = "report/letterhead.yaml"

type (
	Letterhead struct {
		Institution string       `yaml:"institution"`
		Department  string       `yaml:"department"`
		Address     []string     `yaml:"address"`
		Title       string       `yaml:"title"`
		Colors      map[Kind]RGB `yaml:"colors"`
		Footer      string       `yaml:"footer"`
	}

	RGB [3]int
)

var fallbackColor = RGB{55, 65, 81}

// LoadLetterhead reads the letterhead from path, or the embedded default when path is empty.
func LoadLetterhead(path string) (Letterhead, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = appfs.FS.ReadFile(defaultLetterheadPath)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Letterhead{}, errors.Wrap(err, "reading letterhead")
	}

	var lh Letterhead
	if err = yaml.Unmarshal(data, &lh); err != nil {
		return Letterhead{}, errors.Wrap(err, "decoding letterhead")
	}
	return lh, nil
}

// Color is the title bar color of the report kind.
func (lh Letterhead) Color(kind Kind) RGB {
	if c, ok := lh.Colors[kind]; ok {
		return c
	}
	return fallbackColor
}
