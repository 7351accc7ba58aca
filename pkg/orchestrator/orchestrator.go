// Package orchestrator drives the per-record bind → settle → capture →
// collect loop that turns a bound template plus N records into N raster
// images and one downloadable archive.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-bannergen/internal/discover"
	"github.com/goliatone/go-bannergen/pkg/archive"
	"github.com/goliatone/go-bannergen/pkg/assets"
	"github.com/goliatone/go-bannergen/pkg/banner"
	"github.com/goliatone/go-bannergen/pkg/binding"
	"github.com/goliatone/go-bannergen/pkg/capture"
	"github.com/goliatone/go-bannergen/pkg/target"
	"github.com/goliatone/go-bannergen/pkg/template"
)

// DefaultSettleDelay is the layout-stabilisation wait between binding and
// capture. Text metrics are not final immediately after a tree mutation;
// the rasterizer needs the pause even with fonts inlined.
const DefaultSettleDelay = 120 * time.Millisecond

// timestampLayout formats the single per-run timestamp shared by every
// filename of one batch.
const timestampLayout = "20060102150405"

// rasterExt is the extension appended to every archive entry.
const rasterExt = ".png"

// previewName names the artifact rendered from a skeleton placeholder
// record at index 0.
const previewName = "template"

// SleepFunc waits for the settle delay, honouring context cancellation.
// Injectable so tests run without real timers.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithDiscoverer injects a custom slot discoverer.
func WithDiscoverer(d template.Discoverer) Option {
	return func(o *Orchestrator) {
		o.discoverer = d
	}
}

// WithBinder injects a custom binder.
func WithBinder(b *binding.Binder) Option {
	return func(o *Orchestrator) {
		o.binder = b
	}
}

// WithRasterizer injects the rasterization collaborator. Required before a
// batch can run.
func WithRasterizer(r capture.Rasterizer) Option {
	return func(o *Orchestrator) {
		o.rasterizer = r
	}
}

// WithPackager injects a custom archive packager.
func WithPackager(p *archive.Packager) Option {
	return func(o *Orchestrator) {
		o.packager = p
	}
}

// WithSettleDelay overrides the layout-stabilisation wait.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.settleDelay = d
		}
	}
}

// WithSleep injects the wait primitive used for the settle step.
func WithSleep(sleep SleepFunc) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithScale fixes the capture output scale, independent of any preview
// zoom.
func WithScale(scale float64) Option {
	return func(o *Orchestrator) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

// WithLogger attaches a structured logger used for per-record diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProgress registers the per-record completion callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithClock injects the time source for the batch timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator coordinates the full pipeline from bound template to
// packaged rasters. Missing dependencies are initialised with the built-in
// implementations so callers can start with a single constructor call.
type Orchestrator struct {
	discoverer  template.Discoverer
	binder      *binding.Binder
	rasterizer  capture.Rasterizer
	packager    *archive.Packager
	settleDelay time.Duration
	sleep       SleepFunc
	scale       float64
	logger      *zap.Logger
	progress    ProgressFunc
	now         func() time.Time

	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		settleDelay: DefaultSettleDelay,
		scale:       capture.DefaultScale,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}
	if o.discoverer == nil {
		o.discoverer = discover.New()
	}
	if o.binder == nil {
		o.binder = binding.New()
	}
	if o.packager == nil {
		o.packager = archive.NewPackager()
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	o.defaultsApplied = true
}

// Request describes the inputs required to export one batch.
type Request struct {
	// Document is the uploaded template: opaque markup plus stylesheet.
	Document template.Document

	// Descriptor allows callers to bypass discovery when they already hold
	// the slot set, typically because the editing UI built it earlier.
	Descriptor *banner.Descriptor

	// Batch is the ordered record sequence to render.
	Batch banner.Batch

	// Overlay carries the user's manual edits, keyed by record index.
	Overlay banner.Overlay

	// Bundle holds the inline payloads extracted from the upload. Optional;
	// without it every reference passes through unresolved.
	Bundle *assets.Bundle
}

// RunBatch executes the strictly sequential export loop and writes the
// packaged archive to out. Structural failures surface immediately, before
// any record is processed; per-record failures are swallowed, logged, and
// reported only through the returned Summary. A batch in which zero records
// produced a raster fails with archive.ErrEmpty.
func (o *Orchestrator) RunBatch(ctx context.Context, req Request, out io.Writer) (Summary, error) {
	if ctx == nil {
		return Summary{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if o.rasterizer == nil {
		return Summary{}, errors.New("orchestrator: rasterizer is required")
	}
	if out == nil {
		return Summary{}, errors.New("orchestrator: output writer is required")
	}
	if req.Batch.Len() == 0 {
		return Summary{}, errors.New("orchestrator: batch is empty")
	}

	descriptor, err := o.resolveDescriptor(req)
	if err != nil {
		return Summary{}, err
	}

	// One target is reused across the whole batch, rebinding it per record,
	// to bound resource usage. The orchestrator owns it exclusively until
	// the loop ends.
	tgt, err := target.New(req.Document)
	if err != nil {
		return Summary{}, fmt.Errorf("orchestrator: realize target: %w", err)
	}

	resolver := assets.NewResolver(req.Bundle, assets.WithLogger(o.logger))
	o.inlineStylesheet(tgt, resolver)

	timestamp := o.now().Format(timestampLayout)
	placeholder := req.Batch.HasPlaceholder()
	job := newBatchJob(req.Batch)

	for index, record := range job.Records {
		job.Cursor = index

		// Cancellation is checked between records: the only clean cut
		// point while work is serialized on one mutable target.
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}

		name := outputName(record, index, placeholder, timestamp)
		res := Result{Index: index, Name: name}
		res.Data, res.Err = o.renderRecord(ctx, tgt, descriptor, resolver, record, req.Overlay.ForIndex(index))

		if res.Err != nil {
			if ctx.Err() != nil {
				return Summary{}, ctx.Err()
			}
			// One failing record must not abort the batch.
			o.logger.Warn("orchestrator: record failed, continuing",
				zap.Int("index", index),
				zap.String("name", name),
				zap.Error(res.Err))
		}

		job.collect(res)
		o.notify(job, res)
	}

	items := make([]archive.Item, 0, len(job.Results))
	for _, res := range job.Results {
		if res.Failed() {
			continue
		}
		items = append(items, archive.Item{Name: res.Name + rasterExt, Data: res.Data})
	}

	summary := Summary{
		Total:     len(job.Results),
		Succeeded: job.succeeded(),
		Failed:    len(job.Results) - job.succeeded(),
		Timestamp: timestamp,
		Results:   job.Results,
	}

	if err := o.packager.Package(out, items); err != nil {
		if errors.Is(err, archive.ErrEmpty) {
			return summary, fmt.Errorf("orchestrator: batch produced no output: %w", err)
		}
		return summary, fmt.Errorf("orchestrator: package archive: %w", err)
	}

	o.logger.Info("orchestrator: batch completed",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// renderRecord runs one record's bind → settle → capture cycle on the
// shared target.
func (o *Orchestrator) renderRecord(
	ctx context.Context,
	tgt *target.RenderTarget,
	descriptor banner.Descriptor,
	resolver *assets.Resolver,
	record banner.Record,
	edits map[string]any,
) ([]byte, error) {
	// Rebinding starts from the pristine markup so a slot the current
	// record does not supply falls back to its template default instead of
	// the previous record's value.
	if err := tgt.Reset(); err != nil {
		return nil, fmt.Errorf("reset target: %w", err)
	}

	// Record values may carry bare filenames needing the same promotion to
	// inline payloads as template references.
	resolved := resolver.ResolveRecord(record)

	if err := o.binder.Bind(tgt, descriptor, resolved, edits); err != nil {
		return nil, fmt.Errorf("bind record: %w", err)
	}
	resolver.ResolveMarkup(tgt.Document())

	// Settle: layout is not final immediately after mutation.
	if err := o.sleep(ctx, o.settleDelay); err != nil {
		return nil, err
	}

	markup, err := tgt.CaptureMarkup()
	if err != nil {
		return nil, fmt.Errorf("serialize export root: %w", err)
	}

	raster, err := o.rasterizer.Capture(ctx, markup, capture.Options{Scale: o.scale})
	if err != nil {
		return nil, fmt.Errorf("capture raster: %w", err)
	}
	if len(raster) == 0 {
		return nil, errors.New("capture raster: empty output")
	}
	return raster, nil
}

func (o *Orchestrator) resolveDescriptor(req Request) (banner.Descriptor, error) {
	if req.Descriptor != nil {
		return *req.Descriptor, nil
	}
	descriptor, err := o.discoverer.Discover(req.Document)
	if err != nil {
		return banner.Descriptor{}, fmt.Errorf("orchestrator: discover fields: %w", err)
	}
	return descriptor, nil
}

// inlineStylesheet rewrites url() references once per batch. A stylesheet
// that fails to parse keeps its original text; broken styles degrade the
// render, they do not abort it.
func (o *Orchestrator) inlineStylesheet(tgt *target.RenderTarget, resolver *assets.Resolver) {
	css := tgt.Stylesheet()
	if css == "" {
		return
	}
	rewritten, err := resolver.RewriteStylesheet(css)
	if err != nil {
		o.logger.Warn("orchestrator: stylesheet rewrite failed, keeping original", zap.Error(err))
		return
	}
	tgt.SetStylesheet(rewritten)
}

func (o *Orchestrator) notify(job *BatchJob, res Result) {
	if o.progress == nil {
		return
	}
	o.progress(ProgressEvent{
		Index:     res.Index,
		Name:      res.Name,
		Err:       res.Err,
		Completed: len(job.Results),
		Total:     len(job.Records),
	})
}

// outputName applies the filename policy: a record id when present, else a
// sequence fallback. A skeleton placeholder at index 0 becomes a distinct
// template-preview artifact and never shifts the numbering of real records.
func outputName(record banner.Record, index int, placeholder bool, timestamp string) string {
	if placeholder && index == 0 {
		return previewName + "_" + timestamp
	}
	if id := record.ID(); id != "" {
		return id + "_" + timestamp
	}
	seq := index
	if placeholder {
		seq = index - 1
	}
	return strconv.Itoa(seq) + "_" + timestamp
}
