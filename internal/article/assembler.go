// Package article writes HTML recipe articles from retrieved recipes using a
// text generation service.
package article

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/nickcecere/recipewriter/internal/llm"
	"github.com/nickcecere/recipewriter/internal/observability"
	"github.com/nickcecere/recipewriter/internal/recipe"
)

// Section names, also used as metric labels.
const (
	SectionIntro      = "intro"
	SectionRecipe     = "recipe"
	SectionTips       = "tips"
	SectionConclusion = "conclusion"
)

// DefaultConcurrency is the number of generation calls in flight per article.
const DefaultConcurrency = 4

// Assembler generates articles. It is safe for concurrent use.
type Assembler struct {
	llm         llm.Service
	templates   *templates
	opts        llm.CompletionOptions
	concurrency int
}

// Option configures the assembler.
type Option func(*Assembler)

// WithConcurrency bounds the number of generation calls issued at once.
// 1 issues them one after another.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithCompletionOptions overrides the generation settings.
func WithCompletionOptions(opts llm.CompletionOptions) Option {
	return func(a *Assembler) {
		a.opts = opts
	}
}

// New creates an assembler using the given prompt templates.
func New(svc llm.Service, prompts Prompts, opts ...Option) (*Assembler, error) {
	tmpls, err := prompts.parse()
	if err != nil {
		return nil, err
	}

	a := &Assembler{
		llm:         svc,
		templates:   tmpls,
		opts:        llm.DefaultCompletionOptions(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// task is one generation call and the slot its section goes into.
type task struct {
	slot    int
	section string
	prompt  string
	render  func(fragment string) string
}

// Assemble writes an article for the query. Sections appear in a fixed order:
// introduction, one section per recipe in the given order, cuisine tips and
// conclusion. Any failed generation call aborts the article.
func (a *Assembler) Assemble(ctx context.Context, query, cuisine string, count int, recipes []recipe.Recipe) (string, error) {
	tasks, err := a.plan(query, cuisine, count, recipes)
	if err != nil {
		return "", err
	}

	log.Debug("Assembling article", "query", query, "cuisine", cuisine, "recipes", len(recipes), "calls", len(tasks))

	sections := make([]string, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, t := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fragment, err := a.generate(gctx, t.section, t.prompt)
			if err != nil {
				return fmt.Errorf("failed to generate %s section: %w", t.section, err)
			}
			sections[t.slot] = t.render(fragment)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(sections, "\n\n"), nil
}

func (a *Assembler) plan(query, cuisine string, count int, recipes []recipe.Recipe) ([]task, error) {
	base := promptData{Query: query, Cuisine: cuisine, Count: count}
	tasks := make([]task, 0, len(recipes)+3)

	prompt, err := render(a.templates.intro, base)
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, task{
		section: SectionIntro,
		prompt:  prompt,
		render:  func(f string) string { return introSection(query, f) },
	})

	for _, r := range recipes {
		data := base
		data.Title = r.Title
		data.Description = r.Description
		prompt, err := render(a.templates.recipe, data)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task{
			section: SectionRecipe,
			prompt:  prompt,
			render:  func(f string) string { return recipeSection(r, f) },
		})
	}

	prompt, err = render(a.templates.tips, base)
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, task{
		section: SectionTips,
		prompt:  prompt,
		render:  func(f string) string { return tipsSection(cuisine, f) },
	})

	prompt, err = render(a.templates.conclusion, base)
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, task{
		section: SectionConclusion,
		prompt:  prompt,
		render:  WrapFragment,
	})

	for i := range tasks {
		tasks[i].slot = i
	}
	return tasks, nil
}

func (a *Assembler) generate(ctx context.Context, section, prompt string) (string, error) {
	start := time.Now()
	out, err := a.llm.Complete(ctx, llm.UserMessage(prompt), a.opts)
	observability.GenerationLatency.WithLabelValues(section).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.GenerationCallsTotal.WithLabelValues(section, status).Inc()

	return out, err
}
