package bulk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Paintersrp/retag/internal/vault"
)

var (
	// ErrNoSelection is reported when a batch is started with no documents.
	ErrNoSelection = errors.New("no file selected")
	// ErrNoTags is reported when both tag inputs are blank.
	ErrNoTags = errors.New("no tags entered")
	// ErrUnknown stands in for a failure that carried no error value.
	ErrUnknown = errors.New("unknown error")
)

// ValidationError rejects a batch before any document is touched.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DocumentError is the failure of one document's read, rewrite or write.
type DocumentError struct {
	Doc vault.Document
	Op  string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Doc.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// BatchError aggregates every failed document of a batch. Its message carries
// only the first failure, in selection order.
type BatchError struct {
	Failures []*DocumentError
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 0 {
		return "processing failed: " + ErrUnknown.Error()
	}
	return "processing failed: " + e.Failures[0].Err.Error()
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Paths lists the failed documents.
func (e *BatchError) Paths() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Doc.Path
	}
	return out
}

// Detail renders one line per failed document.
func (e *BatchError) Detail() string {
	lines := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		lines[i] = f.Error()
	}
	return strings.Join(lines, "\n")
}
