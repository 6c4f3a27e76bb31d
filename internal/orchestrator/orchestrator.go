// Package orchestrator drives one generator run: options, preprocessing,
// model and operation building, rendering and writing.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/swagger2code/internal/codegen"
	"github.com/mark3labs/swagger2code/internal/spec"
	"github.com/mark3labs/swagger2code/internal/templates"
	"github.com/mark3labs/swagger2code/internal/writer"
)

var (
	// ErrDependentModel aborts a run when a built model references a model
	// that failed to build.
	ErrDependentModel = errors.New("orchestrator: model depends on a failed model")
	// ErrOutputCollision aborts a run when two files share a destination.
	ErrOutputCollision = errors.New("orchestrator: output collision")
)

// Renderer renders one template with a context snapshot.
type Renderer interface {
	Render(id string, data map[string]any) (string, error)
}

// RendererFactory builds the renderer of one run from the plugin layers and
// the optional override directory.
type RendererFactory func(layers []fs.FS, overrideDir string) (Renderer, error)

func defaultRenderer(layers []fs.FS, overrideDir string) (Renderer, error) {
	var opts []templates.Option
	if overrideDir != "" {
		opts = append(opts, templates.WithOverrideDir(overrideDir))
	}
	return templates.New(layers, opts...)
}

// Generator runs generator configs against documents. A Generator holds no
// per-run state and may serve concurrent runs.
type Generator struct {
	writer      writer.Writer
	logger      *zap.Logger
	parallelism int
	newRenderer RendererFactory
	now         func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithWriter sets where rendered files go. The default only plans writes.
func WithWriter(w writer.Writer) Option {
	return func(g *Generator) {
		if w != nil {
			g.writer = w
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithParallelism bounds concurrent render tasks. n <= 0 means GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(g *Generator) { g.parallelism = n }
}

func WithRendererFactory(f RendererFactory) Option {
	return func(g *Generator) {
		if f != nil {
			g.newRenderer = f
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		writer:      writer.NewPlan(),
		logger:      zap.NewNop(),
		newRenderer: defaultRenderer,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.parallelism <= 0 {
		g.parallelism = runtime.GOMAXPROCS(0)
	}
	return g
}

// job is one destination file to render.
type job struct {
	kind     FileKind
	template string
	dest     string
	data     map[string]any
	subject  string
}

type rendered struct {
	content []byte
	err     error
}

// Generate runs cfg against doc. doc is shared and never modified; the plugin
// preprocesses a private copy. Structural failures (configuration, lifecycle,
// dependent models, collisions, writes, cancellation) are returned as errors.
// Per-item failures are recorded as issues and fail the result's Status.
func (g *Generator) Generate(ctx context.Context, doc *spec.Document, cfg *codegen.Config) (*RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if doc == nil {
		return nil, errors.New("orchestrator: document is required")
	}
	if cfg == nil {
		return nil, errors.New("orchestrator: generator config is required")
	}

	start := g.now()
	res := &RunResult{RunID: uuid.NewString(), Generator: cfg.ID(), Status: StatusSuccess}
	log := g.logger.With(zap.String("generator", res.Generator), zap.String("run_id", res.RunID))
	finish := func(err error) (*RunResult, error) {
		res.Duration = g.now().Sub(start)
		if err != nil {
			res.Status = StatusFailed
			log.Error("generation aborted", zap.Error(err), zap.Duration("duration", res.Duration))
			return res, err
		}
		if res.hasErrors() {
			res.Status = StatusFailed
		}
		log.Info("generation finished",
			zap.String("status", string(res.Status)),
			zap.Int("files", len(res.Files)),
			zap.Int("models", len(res.Models)),
			zap.Int("operations", len(res.Operations)),
			zap.Int("issues", len(res.Issues)),
			zap.Duration("duration", res.Duration),
		)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	settings, err := cfg.ProcessOptions()
	if err != nil {
		return finish(fmt.Errorf("orchestrator: process options: %w", err))
	}
	for _, w := range settings.Warnings {
		res.addIssue(Issue{Severity: SeverityWarning, Kind: KindConfig, Subject: res.Generator, Message: w})
		log.Warn("configuration warning", zap.String("warning", w))
	}
	log.Debug("options processed", zap.Int("supporting_files", len(settings.SupportingFiles)))

	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	work, ok := deepcopy.Copy(doc).(*spec.Document)
	if !ok {
		return finish(errors.New("orchestrator: copy document"))
	}
	if err := cfg.Preprocess(work); err != nil {
		return finish(fmt.Errorf("orchestrator: preprocess: %w", err))
	}
	log.Debug("document preprocessed", zap.Int("schemas", len(work.Schemas)), zap.Int("paths", len(work.Paths)))

	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	if err := cfg.BeginBuild(); err != nil {
		return finish(fmt.Errorf("orchestrator: %w", err))
	}
	if err := g.buildModels(work, settings, res, log); err != nil {
		return finish(err)
	}
	log.Debug("models built", zap.Int("models", len(res.Models)))

	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	g.buildOperations(work, settings, res, log)
	res.Groups = codegen.GroupOperations(res.Operations, settings)
	log.Debug("operations built", zap.Int("operations", len(res.Operations)), zap.Int("groups", len(res.Groups)))

	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	jobs, err := g.plan(work, cfg.Plugin(), settings, res)
	if err != nil {
		return finish(err)
	}
	renderer, err := g.newRenderer(cfg.Plugin().Templates(), settings.TemplateDir)
	if err != nil {
		return finish(fmt.Errorf("orchestrator: templates: %w", err))
	}
	outputs, err := g.render(ctx, renderer, cfg.Plugin(), jobs)
	if err != nil {
		return finish(err)
	}
	log.Debug("files rendered", zap.Int("files", len(jobs)))

	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	if err := g.write(ctx, jobs, outputs, res, log); err != nil {
		return finish(err)
	}
	if err := cfg.FinishRender(); err != nil {
		return finish(fmt.Errorf("orchestrator: %w", err))
	}
	return finish(nil)
}

func (g *Generator) buildModels(doc *spec.Document, s codegen.Settings, res *RunResult, log *zap.Logger) error {
	mb := codegen.NewModelBuilder(doc, s)
	failed := map[string]error{}
	for _, name := range doc.SchemaNames() {
		m, err := mb.FromSchema(name, doc.Schemas[name])
		if err != nil {
			failed[name] = err
			res.addIssue(Issue{Severity: SeverityError, Kind: KindModel, Subject: name, Message: err.Error(), Err: err})
			log.Warn("model build failed", zap.String("model", name), zap.Error(err))
			continue
		}
		res.Models = append(res.Models, m)
	}
	for _, m := range res.Models {
		for _, ref := range m.References {
			if cause, ok := failed[ref]; ok {
				return fmt.Errorf("%w: %s references %s: %v", ErrDependentModel, m.Name, ref, cause)
			}
		}
	}
	return nil
}

func (g *Generator) buildOperations(doc *spec.Document, s codegen.Settings, res *RunResult, log *zap.Logger) {
	ob := codegen.NewOperationBuilder(s)
	for _, item := range doc.Paths {
		for _, node := range item.Operations {
			op, err := ob.FromOperation(item.Path, node.Method, node)
			if err != nil {
				subject := fmt.Sprintf("%s %s", node.Method, item.Path)
				res.addIssue(Issue{Severity: SeverityError, Kind: KindOperation, Subject: subject, Message: err.Error(), Err: err})
				log.Warn("operation build failed", zap.String("operation", subject), zap.Error(err))
				continue
			}
			res.Operations = append(res.Operations, op)
		}
	}
}

// plan computes every destination before anything is rendered so that
// collisions are detected up front.
func (g *Generator) plan(doc *spec.Document, p codegen.Plugin, s codegen.Settings, res *RunResult) ([]job, error) {
	base := map[string]any{
		"settings":   s,
		"props":      s.AdditionalProperties,
		"generator":  s.Generator,
		"info":       map[string]any{"title": doc.Title, "version": doc.Version, "description": doc.Description},
		"models":     res.Models,
		"groups":     res.Groups,
		"operations": res.Operations,
	}
	snapshot := func(extra map[string]any) map[string]any {
		out := make(map[string]any, len(base)+len(extra))
		for k, v := range base {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	var jobs []job
	for _, sf := range s.SupportingFiles {
		jobs = append(jobs, job{kind: FileSupporting, template: sf.Template, dest: sf.Path(), subject: sf.Name, data: snapshot(nil)})
	}
	for _, m := range res.Models {
		jobs = append(jobs, job{
			kind:     FileModel,
			template: s.ModelTemplate,
			dest:     p.ModelPath(m, s),
			subject:  m.Name,
			data:     snapshot(map[string]any{"model": m}),
		})
	}
	for _, grp := range res.Groups {
		jobs = append(jobs, job{
			kind:     FileAPI,
			template: s.APITemplate,
			dest:     p.APIPath(grp, s),
			subject:  grp.Name,
			data:     snapshot(map[string]any{"group": grp, "operations": grp.Operations}),
		})
	}

	seen := make(map[string]string, len(jobs))
	for i := range jobs {
		dest, err := writer.Clean(jobs[i].dest)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: %s %s: %w", jobs[i].kind, jobs[i].subject, err)
		}
		if prev, ok := seen[dest]; ok {
			return nil, fmt.Errorf("%w: %s is produced by both %s and %s %s", ErrOutputCollision, dest, prev, jobs[i].kind, jobs[i].subject)
		}
		seen[dest] = fmt.Sprintf("%s %s", jobs[i].kind, jobs[i].subject)
		jobs[i].dest = dest
	}
	return jobs, nil
}

func (g *Generator) render(ctx context.Context, r Renderer, p codegen.Plugin, jobs []job) ([]rendered, error) {
	post, _ := p.(codegen.PostProcessor)
	out := make([]rendered, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelism)
	for i := range jobs {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			j := jobs[i]
			text, err := r.Render(j.template, j.data)
			if err != nil {
				out[i].err = &codegen.RenderError{Template: j.template, Destination: j.dest, Err: err}
				return nil
			}
			content := []byte(text)
			if post != nil {
				if content, err = post.PostProcess(j.dest, content); err != nil {
					out[i].err = &codegen.RenderError{Template: j.template, Destination: j.dest, Err: err}
					return nil
				}
			}
			out[i].content = content
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// write commits the rendered files in sorted destination order. Files that
// failed to render are reported and skipped.
func (g *Generator) write(ctx context.Context, jobs []job, outputs []rendered, res *RunResult, log *zap.Logger) error {
	order := make([]int, len(jobs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return jobs[order[a]].dest < jobs[order[b]].dest })

	for _, i := range order {
		j, o := jobs[i], outputs[i]
		if o.err != nil {
			res.addIssue(Issue{Severity: SeverityError, Kind: KindRender, Subject: j.dest, Message: o.err.Error(), Err: o.err})
			log.Warn("render failed", zap.String("destination", j.dest), zap.String("template", j.template), zap.Error(o.err))
			continue
		}
		if err := g.writer.Write(ctx, j.dest, o.content); err != nil {
			return fmt.Errorf("orchestrator: write %s: %w", j.dest, err)
		}
		res.Files = append(res.Files, File{Path: j.dest, Template: j.template, Kind: j.kind, Size: len(o.content)})
	}
	return nil
}
