package instance

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"q.log/transport/model"
)

// ErrFormat is returned for a file that does not describe a transportation
// problem.
var ErrFormat = errors.New("instance: malformed problem")

// Reader reads a transportation problem from a file. Files with the .mps
// extension are read through GLPK; any other file is a text tableau.
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

// ReadProblem returns the validated problem stored in the file.
func (r *Reader) ReadProblem() (*model.Problem, error) {
	if strings.EqualFold(filepath.Ext(r.filename), ".mps") {
		return readMPS(r.filename)
	}

	f, err := os.Open(r.filename)
	if err != nil {
		return nil, errors.Wrap(err, "instance")
	}
	defer f.Close()

	p, err := ParseTableau(f)
	if err != nil {
		return nil, errors.Wrapf(err, "instance: %s", r.filename)
	}
	return p, nil
}
