package pipeline

import (
	"errors"
	"io"
	"os"

	errs "github.com/matzehuels/sankey/pkg/errors"
	pkgio "github.com/matzehuels/sankey/pkg/io"
	"github.com/matzehuels/sankey/pkg/sankey"
)

// LoadInput reads the graph file at path. Decoding failures are reported as
// INVALID_FORMAT, a missing file as FILE_NOT_FOUND.
func LoadInput(path string) (sankey.Input, error) {
	in, err := pkgio.ImportInput(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sankey.Input{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "input file not found: %s", path)
		}
		return sankey.Input{}, decodeError(err)
	}
	return in, nil
}

// DecodeInput reads a graph in the given format from r.
func DecodeInput(r io.Reader, format pkgio.Format) (sankey.Input, error) {
	in, err := pkgio.ReadInput(r, format)
	if err != nil {
		return sankey.Input{}, decodeError(err)
	}
	return in, nil
}

func decodeError(err error) error {
	if errors.Is(err, pkgio.ErrInvalidRef) {
		return errs.Wrap(errs.ErrCodeInvalidReference, err, "%s", err.Error())
	}
	return errs.Wrap(errs.ErrCodeInvalidFormat, err, "cannot decode input")
}
