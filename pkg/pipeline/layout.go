package pipeline

import (
	"errors"
	"os"

	errs "github.com/matzehuels/sankey/pkg/errors"
	pkgio "github.com/matzehuels/sankey/pkg/io"
	"github.com/matzehuels/sankey/pkg/sankey"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout validates opts and in, then computes the layout without
// touching any cache. Errors are coded.
func GenerateLayout(in sankey.Input, opts Options) (*sankey.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	l, err := sankey.Build(in, opts.Width, opts.Height, opts.SankeyOptions()...)
	if err != nil {
		return nil, Classify(err)
	}
	return l, nil
}

// ValidateInput checks caller-supplied node IDs.
func ValidateInput(in sankey.Input) error {
	for i, n := range in.Nodes {
		if err := errs.ValidateNodeID(n.ID); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "node %d", i)
		}
	}
	return nil
}

// =============================================================================
// Error Classification
// =============================================================================

var codes = []struct {
	target error
	code   errs.Code
}{
	{sankey.ErrInvalidReference, errs.ErrCodeInvalidReference},
	{pkgio.ErrInvalidRef, errs.ErrCodeInvalidReference},
	{sankey.ErrInvalidValue, errs.ErrCodeInvalidValue},
	{sankey.ErrInvalidSize, errs.ErrCodeInvalidSize},
	{sankey.ErrInvalidOption, errs.ErrCodeInvalidOption},
	{sankey.ErrDuplicateNodeID, errs.ErrCodeInvalidInput},
	{sankey.ErrCyclicGraph, errs.ErrCodeInvalidInput},
	{pkgio.ErrUnknownFormat, errs.ErrCodeInvalidFormat},
	{os.ErrNotExist, errs.ErrCodeFileNotFound},
}

// Classify converts err into a coded error. Errors that already carry a
// code are returned unchanged; unknown errors become INTERNAL_ERROR.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errs.GetCode(err) != "" {
		return err
	}
	for _, c := range codes {
		if errors.Is(err, c.target) {
			return errs.Wrap(c.code, err, "%s", err.Error())
		}
	}
	return errs.Wrap(errs.ErrCodeInternal, err, "internal error")
}
