// Package bulk applies a tag edit to a batch of documents.
package bulk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Paintersrp/retag/internal/frontmatter"
	"github.com/Paintersrp/retag/internal/logging"
	"github.com/Paintersrp/retag/internal/vault"
)

// Options tune an Orchestrator.
type Options struct {
	// AutoRefresh signals the store after a successful batch.
	AutoRefresh bool
	// StampUpdated writes an `updated` field into every rewritten header.
	StampUpdated bool
	// Workers caps concurrent documents. Zero or less runs them all at once.
	Workers int
	// DryRun computes the new text without writing it.
	DryRun bool
	// Now supplies the stamp time. Defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome for one document.
type Result struct {
	Doc     vault.Document
	NewText string
	Err     error
}

// Report summarizes a batch.
type Report struct {
	// Processed counts documents rewritten (or, for a dry run, computed)
	// without error.
	Processed int
	Results   []Result
	DryRun    bool
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

type Orchestrator struct {
	store vault.Store
	opts  Options
	log   *logging.Logger
}

func New(store vault.Store, opts Options) *Orchestrator {
	return &Orchestrator{
		store: store,
		opts:  opts,
		log:   logging.Get("bulk"),
	}
}

// ParseTags splits raw input on ASCII and full-width commas, trims each piece,
// removes every '#', and drops empty pieces.
func ParseTags(input string) []string {
	pieces := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '，'
	})

	var tags []string
	for _, piece := range pieces {
		tag := strings.TrimSpace(strings.ReplaceAll(piece, "#", ""))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Validate rejects an empty selection or two blank tag inputs.
func Validate(docs []vault.Document, addRaw, removeRaw string) error {
	if len(docs) == 0 {
		return &ValidationError{Err: ErrNoSelection}
	}
	if strings.TrimSpace(addRaw) == "" && strings.TrimSpace(removeRaw) == "" {
		return &ValidationError{Err: ErrNoTags}
	}
	return nil
}

// Apply rewrites the header of every document concurrently. A failing
// document does not stop the others; all failures come back as one
// *BatchError alongside the report. Once started the batch runs to
// completion, so ctx is only checked before any document is touched.
func (o *Orchestrator) Apply(ctx context.Context, docs []vault.Document, addRaw, removeRaw string) (*Report, error) {
	if err := Validate(docs, addRaw, removeRaw); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	add := ParseTags(addRaw)
	remove := ParseTags(removeRaw)
	rewriteOpts := frontmatter.Options{StampUpdated: o.opts.StampUpdated, Now: o.opts.Now}

	logger := o.log.With("documents", len(docs), "dry_run", o.opts.DryRun)
	logger.Info("applying tags", "add", add, "remove", remove)

	results := make([]Result, len(docs))
	var g errgroup.Group
	if o.opts.Workers > 0 {
		g.SetLimit(o.opts.Workers)
	}

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = o.applyOne(doc, add, remove, rewriteOpts)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{Results: results, DryRun: o.opts.DryRun}
	var batch BatchError
	for _, res := range results {
		if res.Err == nil {
			report.Processed++
			continue
		}
		docErr, ok := res.Err.(*DocumentError)
		if !ok {
			docErr = &DocumentError{Doc: res.Doc, Op: "apply", Err: res.Err}
		}
		batch.Failures = append(batch.Failures, docErr)
	}

	if len(batch.Failures) > 0 {
		logger.Error("batch failed", "failed", len(batch.Failures), "first", batch.Failures[0].Error())
		return report, &batch
	}

	if o.opts.AutoRefresh && !o.opts.DryRun {
		o.store.NotifyViewsStale()
	}
	logger.Info("batch applied", "processed", report.Processed)
	return report, nil
}

func (o *Orchestrator) applyOne(doc vault.Document, add, remove []string, opts frontmatter.Options) (res Result) {
	res.Doc = doc
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%w: %v", ErrUnknown, r)
			}
			res.Err = &DocumentError{Doc: doc, Op: "rewrite", Err: err}
		}
	}()

	text, err := o.store.ReadText(doc)
	if err != nil {
		res.Err = &DocumentError{Doc: doc, Op: "read", Err: err}
		return res
	}

	header, err := o.store.ParsedHeader(doc)
	if err != nil {
		res.Err = &DocumentError{Doc: doc, Op: "parse", Err: err}
		return res
	}

	res.NewText = frontmatter.Rewrite(text, header, add, remove, opts)
	if o.opts.DryRun {
		return res
	}

	if err := o.store.WriteText(doc, res.NewText); err != nil {
		res.Err = &DocumentError{Doc: doc, Op: "write", Err: err}
	}
	return res
}
