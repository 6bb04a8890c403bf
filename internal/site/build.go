// Package site builds a blog from a content directory: it parses pages,
// decides author bio placement for each, renders Markdown into layouts and
// writes the HTML tree, list pages and a build report.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/blogbuilder/internal/authorbio"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	derrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/fingerprint"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/layout"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// Builder renders a site from its configuration.
type Builder struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewBuilder returns a Builder logging to slog.Default and recording no metrics.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// Build renders the whole site. The returned report is never nil; on
// success it has also been written to the output directory.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	report := newReport(uuid.NewString())
	log := b.logger.With(logfields.BuildID(report.BuildID))
	log.Info("Build started", logfields.Path(b.cfg.ContentPath()), logfields.Output(b.cfg.OutputPath()))

	err := b.build(ctx, log, report)
	canceled := ctx.Err() != nil && errors.Is(err, ctx.Err())
	report.finish(err, canceled)
	if err == nil {
		if perr := report.Persist(b.cfg.OutputPath()); perr != nil {
			err = derrors.OutputError(filepath.Join(b.cfg.OutputPath(), ReportFile), perr)
			report.Outcome = metrics.BuildFailed
		}
	}

	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.IncBuildOutcome(report.Outcome)

	attrs := []any{
		logfields.Pages(report.Pages),
		slog.Int("rendered", report.Rendered),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("skipped", report.Skipped),
		slog.Int("warnings", len(report.Warnings)),
		logfields.DurationMS(float64(report.Duration.Microseconds()) / 1000),
		slog.String("outcome", string(report.Outcome)),
	}
	if err != nil {
		log.Error("Build failed", append(attrs, logfields.Error(err))...)
		return report, err
	}
	log.Info("Build finished", attrs...)
	return report, nil
}

// run holds the state of a single build.
type run struct {
	cfg      *config.Config
	log      *slog.Logger
	recorder metrics.Recorder
	report   *Report

	engine   *layout.Engine
	md       *markdown.Renderer
	params   authorbio.SiteParams
	autoBio  bool
	site     layout.Site
	outDir   string
	manifest *fingerprint.Manifest
}

func (b *Builder) build(ctx context.Context, log *slog.Logger, report *Report) error {
	cfg := b.cfg
	r := &run{
		cfg:      cfg,
		log:      log,
		recorder: b.recorder,
		report:   report,
		md:       markdown.NewRenderer(markdown.Options{Sanitize: cfg.SanitizeHTML()}),
		params:   cfg.SiteParams(),
		autoBio:  cfg.AutoAuthorBio(),
		site:     layout.Site{Title: cfg.Title, BaseURL: cfg.BaseURL, Description: cfg.Description},
		outDir:   cfg.OutputPath(),
	}

	engine, err := layout.Load(cfg.LayoutsPath())
	if err != nil {
		return derrors.LayoutError(cfg.LayoutsPath(), err)
	}
	r.engine = engine

	sources, err := Discover(cfg.ContentPath())
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "content directory could not be read").
			WithContext("path", cfg.ContentPath())
	}
	report.Pages = len(sources)
	if len(sources) == 0 {
		report.warn("", "no content files found in "+cfg.ContentPath())
	}

	if cfg.Build.Clean {
		if err := r.clean(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(r.outDir, 0o750); err != nil {
		return derrors.OutputError(r.outDir, err)
	}

	r.manifest, err = fingerprint.LoadManifest(r.outDir, r.siteFingerprint())
	if err != nil {
		log.Warn("Ignoring unreadable manifest", logfields.Error(err))
		r.manifest = fingerprint.NewManifest(r.siteFingerprint())
	}

	var loaded []*Loaded
	if err := r.stage("load", func() (err error) {
		loaded, err = r.loadAll(ctx, sources)
		return err
	}); err != nil {
		return err
	}
	pages, branches := r.plan(loaded)

	if err := r.stage("render", func() error { return r.renderPages(ctx, pages) }); err != nil {
		return err
	}
	if err := r.stage("lists", func() error { return r.renderLists(ctx, pages, branches) }); err != nil {
		return err
	}
	if err := r.stage("manifest", func() error { return r.finishManifest(pages, branches) }); err != nil {
		return err
	}

	sort.SliceStable(report.Warnings, func(i, j int) bool { return report.Warnings[i].Page < report.Warnings[j].Page })
	return nil
}

// stage runs one build phase and logs its duration.
func (r *run) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	attrs := []any{logfields.Stage(name), logfields.DurationMS(float64(time.Since(start).Microseconds()) / 1000)}
	if err != nil {
		attrs = append(attrs, logfields.Error(err))
	}
	r.log.Debug("Stage finished", attrs...)
	return err
}

// siteFingerprint covers every input shared by all pages. A change to any of
// them invalidates the whole manifest.
func (r *run) siteFingerprint() string {
	return fingerprint.Combine(
		r.params.AuthorsName,
		r.params.AuthorsDescription,
		r.params.AuthorsLinkedIn,
		strconv.FormatBool(r.autoBio),
		strconv.FormatBool(r.cfg.SanitizeHTML()),
		r.engine.Digest(),
		r.site.Title,
		r.site.BaseURL,
		r.site.Description,
	)
}

func (r *run) clean() error {
	root, _ := filepath.Abs(r.cfg.Root)
	out, _ := filepath.Abs(r.outDir)
	content, _ := filepath.Abs(r.cfg.ContentPath())
	if out == root || out == filepath.Dir(out) || strings.HasPrefix(content+string(filepath.Separator), out+string(filepath.Separator)) {
		return derrors.ValidationFailed("build.output_dir", "refusing to clean "+out)
	}
	r.log.Debug("Cleaning output directory", logfields.Output(out))
	if err := os.RemoveAll(out); err != nil {
		return derrors.OutputError(out, err)
	}
	return nil
}

// forEach runs fn for indexes [0, n) with at most limit running at once. It
// stops scheduling after the first error or when ctx is done.
func forEach(ctx context.Context, limit, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// loadAll reads and parses every source in parallel. Sources that fail to
// parse are reported and left nil.
func (r *run) loadAll(ctx context.Context, sources []Source) ([]*Loaded, error) {
	out := make([]*Loaded, len(sources))
	err := forEach(ctx, r.cfg.Build.Concurrency, len(sources), func(_ context.Context, i int) error {
		l, err := Load(sources[i])
		if err != nil {
			if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
				return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "content file could not be read").
					WithContext("page", sources[i].Rel)
			}
			perr := derrors.ContentParseFailed(sources[i].Rel, err)
			r.log.Warn("Skipping page", logfields.Page(sources[i].Rel), logfields.Error(perr))
			r.report.warn(sources[i].Rel, "skipped: "+err.Error())
			return nil
		}
		out[i] = &l
		return nil
	})
	return out, err
}

// plan drops drafts and unparsable pages, reports front matter problems and
// output collisions, and separates pages from branch files.
func (r *run) plan(loaded []*Loaded) ([]*Loaded, map[string]*Loaded) {
	var pages []*Loaded
	branches := map[string]*Loaded{}
	claimed := map[string]string{}
	skip := func(rel string) {
		r.report.Skipped++
		r.recorder.IncPageResult(metrics.ResultSkipped)
		r.log.Debug("Page skipped", logfields.Page(rel))
	}

	for _, l := range loaded {
		if l == nil {
			skip("")
			continue
		}
		if l.Page.FrontMatter.Draft && !r.cfg.Build.Drafts {
			skip(l.Rel)
			continue
		}
		for _, p := range l.Problems {
			r.report.warn(l.Rel, problemMessage(*l, p))
		}

		if l.Kind == KindBranch {
			if prev, ok := branches[l.Dir]; ok {
				r.report.warn(l.Rel, "ignored: list content already provided by "+prev.Rel)
				skip(l.Rel)
				continue
			}
			branches[l.Dir] = l
			continue
		}
		pages = append(pages, l)
	}

	// list pages own their directories
	lists := listDirs(pages, branches)
	for dir := range lists {
		claimed[path.Join(dir, "index.html")] = "list page"
	}
	kept := pages[:0]
	for _, l := range pages {
		out := l.Output()
		if owner, ok := claimed[out]; ok {
			msg := fmt.Sprintf("skipped: output %s already written by %s", out, owner)
			if owner == "list page" {
				msg += "; use _index.md for list content"
			}
			r.report.warn(l.Rel, msg)
			skip(l.Rel)
			continue
		}
		claimed[out] = l.Rel
		kept = append(kept, l)
	}
	return kept, branches
}

func problemMessage(l Loaded, p error) string {
	switch {
	case errors.Is(p, frontmatter.ErrMissingTitle):
		return fmt.Sprintf("missing title, using %q", l.Title())
	case errors.Is(p, frontmatter.ErrMissingDate):
		return "missing date, page sorts last"
	}
	var issue frontmatter.FieldIssue
	if errors.As(p, &issue) && issue.Field == frontmatter.FieldHideAuthorBio {
		return fmt.Sprintf("%s must be a boolean, got %v; treating as absent (bio shown)", issue.Field, issue.Value)
	}
	return p.Error()
}

// listDirs returns the directories that get a list page: the home page, each
// section holding pages below it, and each directory with a branch file. A
// top-level page bundle such as about/index.md is a page, not a section.
func listDirs(pages []*Loaded, branches map[string]*Loaded) map[string]struct{} {
	dirs := map[string]struct{}{"": {}}
	for _, l := range pages {
		if l.Section != "" && l.Dir != l.Section {
			dirs[l.Section] = struct{}{}
		}
	}
	for dir := range branches {
		dirs[dir] = struct{}{}
	}
	return dirs
}

type pageResult struct {
	decision  authorbio.Decision
	result    metrics.ResultLabel
	duplicate bool
}

func (r *run) renderPages(ctx context.Context, pages []*Loaded) error {
	results := make([]pageResult, len(pages))
	err := forEach(ctx, r.cfg.Build.Concurrency, len(pages), func(_ context.Context, i int) error {
		start := time.Now()
		res, err := r.renderPage(pages[i])
		if err != nil {
			r.recorder.IncPageResult(metrics.ResultFailed)
			return err
		}
		results[i] = res
		r.recorder.ObservePageDuration(time.Since(start))
		r.recorder.IncPageResult(res.result)
		r.recorder.IncAuthorBio(res.decision.ShowAuthorBio)
		return nil
	})
	if err != nil {
		return err
	}

	for _, res := range results {
		switch res.result {
		case metrics.ResultRendered:
			r.report.Rendered++
		case metrics.ResultUnchanged:
			r.report.Unchanged++
		}
		if res.decision.ShowAuthorBio {
			r.report.BiosShown++
		} else {
			r.report.BiosHidden++
		}
		if res.duplicate {
			r.report.DuplicateBios++
		}
	}
	return nil
}

func (r *run) renderPage(l *Loaded) (pageResult, error) {
	decision := authorbio.Decide(l.Page.FrontMatter, r.params)
	log := r.log.With(logfields.Page(l.Rel), logfields.AuthorBio(decision.ShowAuthorBio))
	out := l.Output()

	if r.cfg.Build.Incremental {
		if prev, ok := r.manifest.Unchanged(l.Rel, l.Fingerprint, r.outDir); ok {
			log.Debug("Page unchanged")
			_, markers := markdown.MarkBioShortcodes(l.Page.Body)
			res := pageResult{decision: decision, result: metrics.ResultUnchanged}
			res.duplicate = r.checkDuplicate(log, l.Rel, prev.Bios, markers)
			return res, nil
		}
	}

	content, markers, err := r.renderBody(l, decision)
	if err != nil {
		return pageResult{}, derrors.RenderFailed(l.Rel, err)
	}

	var buf bytes.Buffer
	err = r.engine.RenderPage(&buf, layout.PageData{
		Site:      r.site,
		Title:     l.Title(),
		Date:      l.Page.FrontMatter.Date,
		Permalink: permalink(r.site.BaseURL, l.Dir),
		Content:   content,
		Params:    l.Page.FrontMatter.Fields,
		Bio:       decision,
		AutoBio:   r.autoBio,
	})
	if err != nil {
		return pageResult{}, derrors.RenderFailed(l.Rel, err)
	}

	res := pageResult{decision: decision, result: metrics.ResultRendered}
	bios, err := CountAuthorBios(bytes.NewReader(buf.Bytes()))
	if err != nil {
		log.Warn("Could not inspect rendered page", logfields.Error(err))
	}
	res.duplicate = r.checkDuplicate(log, l.Rel, bios, markers)

	if err := r.write(out, buf.Bytes()); err != nil {
		return pageResult{}, err
	}
	r.manifest.Record(l.Rel, fingerprint.Entry{Fingerprint: l.Fingerprint, Output: out, Bios: bios})
	log.Debug("Page rendered", logfields.Output(out))
	return res, nil
}

// checkDuplicate warns when a page's output holds more than one author bio.
func (r *run) checkDuplicate(log *slog.Logger, rel string, bios, markers int) bool {
	if bios <= 1 {
		return false
	}
	msg := fmt.Sprintf("author bio rendered %d times", bios)
	if markers > 0 && r.autoBio {
		msg += " (author-bio shortcode used while author_bio.auto is enabled)"
	}
	log.Warn("Duplicate author bio", slog.Int("count", bios))
	r.report.warn(rel, msg)
	return true
}

// renderBody converts the page body to HTML and substitutes manual bio
// placements. It returns the number of shortcodes found.
func (r *run) renderBody(l *Loaded, decision authorbio.Decision) (template.HTML, int, error) {
	body, markers := markdown.MarkBioShortcodes(l.Page.Body)
	html, err := r.md.Render(body)
	if err != nil {
		return "", 0, err
	}
	if markers > 0 {
		bio, err := r.engine.RenderBio(decision)
		if err != nil {
			return "", 0, err
		}
		html = markdown.ReplaceBioPlaceholders(html, []byte(bio))
	}
	return template.HTML(html), markers, nil // #nosec G203 -- rendered and optionally sanitized markdown
}

type listEntry struct {
	entry layout.ListEntry
	dir   string
}

func (r *run) renderLists(ctx context.Context, pages []*Loaded, branches map[string]*Loaded) error {
	entries := make([]listEntry, 0, len(pages))
	for _, l := range pages {
		entries = append(entries, listEntry{
			entry: layout.ListEntry{Title: l.Title(), Date: l.Page.FrontMatter.Date, Permalink: permalink(r.site.BaseURL, l.Dir)},
			dir:   l.Dir,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].entry, entries[j].entry
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Title < b.Title
	})

	dirs := make([]string, 0)
	for dir := range listDirs(pages, branches) {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		data := layout.ListData{Site: r.site, Permalink: permalink(r.site.BaseURL, dir)}
		if dir != "" {
			data.Title = titleFromName(path.Base(dir))
		}
		for _, e := range entries {
			if dir == "" || strings.HasPrefix(e.dir, dir+"/") {
				data.Pages = append(data.Pages, e.entry)
			}
		}
		if b, ok := branches[dir]; ok {
			if t := b.Page.FrontMatter.Title; t != "" {
				data.Title = t
			}
			content, _, err := r.renderBody(b, authorbio.Decide(b.Page.FrontMatter, r.params))
			if err != nil {
				return derrors.RenderFailed(b.Rel, err)
			}
			data.Content = content
		}

		var buf bytes.Buffer
		if err := r.engine.RenderList(&buf, data); err != nil {
			return derrors.RenderFailed(path.Join(dir, "_index.md"), err)
		}
		out := path.Join(dir, "index.html")
		if err := r.write(out, buf.Bytes()); err != nil {
			return err
		}
		r.report.Lists++
		r.log.Debug("List rendered", logfields.Section(dir), logfields.Output(out), logfields.Pages(len(data.Pages)))
	}
	return nil
}

// finishManifest drops entries for pages that no longer exist, removes their
// stale output and saves the manifest. Outputs written by this build, pages
// or lists, are never removed.
func (r *run) finishManifest(pages []*Loaded, branches map[string]*Loaded) error {
	keep := make(map[string]struct{}, len(pages))
	written := make(map[string]struct{}, len(pages))
	for _, l := range pages {
		keep[l.Rel] = struct{}{}
		written[l.Output()] = struct{}{}
	}
	lists := listDirs(pages, branches)
	for _, e := range r.manifest.Prune(keep) {
		if e.Output == "" {
			continue
		}
		if _, ok := written[e.Output]; ok {
			continue
		}
		dir := path.Dir(e.Output)
		if dir == "." {
			dir = ""
		}
		if _, ok := lists[dir]; ok {
			continue
		}
		target := filepath.Join(r.outDir, filepath.FromSlash(e.Output))
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.log.Warn("Could not remove stale output", logfields.Output(e.Output), logfields.Error(err))
			continue
		}
		_ = os.Remove(filepath.Dir(target)) // only succeeds when empty
		r.log.Debug("Removed stale output", logfields.Output(e.Output))
	}
	if err := r.manifest.Save(r.outDir); err != nil {
		return derrors.OutputError(filepath.Join(r.outDir, fingerprint.ManifestFile), err)
	}
	return nil
}

func (r *run) write(rel string, data []byte) error {
	target := filepath.Join(r.outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return derrors.OutputError(target, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil { // #nosec G306 -- public site output
		return derrors.OutputError(target, err)
	}
	return nil
}
