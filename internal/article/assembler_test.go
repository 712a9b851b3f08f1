package article

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/recipewriter/internal/llm"
	"github.com/nickcecere/recipewriter/internal/recipe"
)

// fakeLLM answers each prompt through a caller-supplied function.
type fakeLLM struct {
	respond func(prompt string) (string, error)

	mu       sync.Mutex
	prompts  []string
	opts     []llm.CompletionOptions
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

var _ llm.Service = (*fakeLLM)(nil)

func (f *fakeLLM) Complete(ctx context.Context, messages []llm.Message, opts llm.CompletionOptions) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	prompt := messages[len(messages)-1].Content
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.respond(prompt)
}

func (f *fakeLLM) Provider() llm.Provider { return "fake" }
func (f *fakeLLM) ModelName() string      { return "fake-model" }

func testRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		{Title: "Spaghetti Carbonara", Description: "Eggs, pecorino, guanciale.", URL: "https://example.com/carbonara", ImageURL: "https://example.com/carbonara.jpg"},
		{Title: "Cacio e Pepe", Description: "Three ingredients.", URL: "https://example.com/cacio"},
		{Title: "Penne Arrabbiata", Description: "Angry tomato sauce.", URL: "https://example.com/arrabbiata"},
	}
}

// echoResponder returns a fragment naming the section and recipe the prompt is about.
func echoResponder(prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "introduction"):
		return "<p>INTRO</p>", nil
	case strings.Contains(prompt, "cooking tips"):
		return "<p>TIPS</p>", nil
	case strings.Contains(prompt, "conclusion"):
		return "<p>CONCLUSION</p>", nil
	}
	for _, r := range testRecipes() {
		if strings.Contains(prompt, "Title: "+r.Title) {
			return "<p>ABOUT " + r.Title + "</p>", nil
		}
	}
	return "", errors.New("unexpected prompt")
}

func newAssembler(t *testing.T, svc llm.Service, opts ...Option) *Assembler {
	t.Helper()
	a, err := New(svc, DefaultPrompts(), opts...)
	require.NoError(t, err)
	return a
}

func TestAssembleStructure(t *testing.T) {
	fake := &fakeLLM{respond: echoResponder}
	a := newAssembler(t, fake)

	out, err := a.Assemble(context.Background(), "3 Italian Pasta Classics", "italian", 3, testRecipes())
	require.NoError(t, err)

	sections := strings.Split(out, "\n\n")
	require.Len(t, sections, 6)

	assert.Equal(t, "<h1>3 Italian Pasta Classics</h1>\n<p>INTRO</p>", sections[0])
	assert.Equal(t, "<h2>Spaghetti Carbonara</h2>\n"+
		`<img src="https://example.com/carbonara.jpg" alt="Spaghetti Carbonara" style="`+imageStyle+`" />`+"\n"+
		"<p>ABOUT Spaghetti Carbonara</p>\n"+
		"<p><a href='https://example.com/carbonara'>View Recipe</a></p>", sections[1])
	assert.Contains(t, sections[2], `<div class="recipe-image-placeholder"`)
	assert.Contains(t, sections[2], "Image: Cacio e Pepe</div>")
	assert.Contains(t, sections[3], "<p>ABOUT Penne Arrabbiata</p>")
	assert.Equal(t, "<h2>Cooking Tips for Italian Cuisine</h2>\n<p>TIPS</p>", sections[4])
	assert.Equal(t, "<p>CONCLUSION</p>", sections[5])

	assert.Len(t, fake.prompts, 6)
	for _, opts := range fake.opts {
		assert.Equal(t, 0.7, opts.Temperature)
	}
}

func TestAssembleKeepsOrderUnderConcurrency(t *testing.T) {
	recipes := testRecipes()
	// Earlier recipes finish last.
	delays := map[string]time.Duration{
		recipes[0].Title: 60 * time.Millisecond,
		recipes[1].Title: 30 * time.Millisecond,
		recipes[2].Title: 0,
	}
	fake := &fakeLLM{respond: func(prompt string) (string, error) {
		for title, d := range delays {
			if strings.Contains(prompt, "Title: "+title) {
				time.Sleep(d)
			}
		}
		return echoResponder(prompt)
	}}
	a := newAssembler(t, fake, WithConcurrency(6))

	out, err := a.Assemble(context.Background(), "pasta", "italian", 3, recipes)
	require.NoError(t, err)

	first := strings.Index(out, "ABOUT Spaghetti Carbonara")
	second := strings.Index(out, "ABOUT Cacio e Pepe")
	third := strings.Index(out, "ABOUT Penne Arrabbiata")
	assert.True(t, first < second && second < third, "recipe sections out of order")
	assert.Greater(t, fake.maxSeen.Load(), int32(1))
}

func TestAssembleSequential(t *testing.T) {
	fake := &fakeLLM{respond: echoResponder}
	a := newAssembler(t, fake, WithConcurrency(1))

	_, err := a.Assemble(context.Background(), "pasta", "italian", 3, testRecipes())
	require.NoError(t, err)

	assert.Equal(t, int32(1), fake.maxSeen.Load())
	require.Len(t, fake.prompts, 6)
	assert.Contains(t, fake.prompts[0], "introduction")
	assert.Contains(t, fake.prompts[1], "Title: Spaghetti Carbonara")
	assert.Contains(t, fake.prompts[4], "cooking tips")
	assert.Contains(t, fake.prompts[5], "conclusion")
}

func TestAssembleNoRecipes(t *testing.T) {
	fake := &fakeLLM{respond: echoResponder}
	a := newAssembler(t, fake)

	out, err := a.Assemble(context.Background(), "vegan thai", "thai", 5, nil)
	require.NoError(t, err)

	assert.NotContains(t, out, "View Recipe")
	assert.Equal(t, "<h1>vegan thai</h1>\n<p>INTRO</p>\n\n<h2>Cooking Tips for Thai Cuisine</h2>\n<p>TIPS</p>\n\n<p>CONCLUSION</p>", out)
	assert.Len(t, fake.prompts, 3)
}

func TestAssembleFailureAborts(t *testing.T) {
	fake := &fakeLLM{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Cacio e Pepe") {
			return "", errors.New("upstream 503")
		}
		return echoResponder(prompt)
	}}
	a := newAssembler(t, fake, WithConcurrency(1))

	out, err := a.Assemble(context.Background(), "pasta", "italian", 3, testRecipes())

	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "recipe section")
	assert.Contains(t, err.Error(), "upstream 503")
	// sequential: nothing after the failing call is issued
	assert.Len(t, fake.prompts, 3)
}

func TestAssemblePromptContent(t *testing.T) {
	fake := &fakeLLM{respond: echoResponder}
	a := newAssembler(t, fake, WithConcurrency(1), WithCompletionOptions(llm.CompletionOptions{Temperature: 0.3, MaxTokens: 100}))

	_, err := a.Assemble(context.Background(), "best 3 pasta", "italian", 3, testRecipes()[:1])
	require.NoError(t, err)

	assert.Contains(t, fake.prompts[0], `article titled "best 3 pasta"`)
	assert.Contains(t, fake.prompts[0], "collection of 3 recipes")
	assert.Contains(t, fake.prompts[1], "Description: Eggs, pecorino, guanciale.")
	assert.Contains(t, fake.prompts[1], "authentic italian")
	assert.Contains(t, fake.prompts[2], "tips for italian cuisine")
	assert.Contains(t, fake.prompts[3], "article about best 3 pasta")
	assert.Equal(t, 0.3, fake.opts[0].Temperature)
}

func TestWrapFragment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Hello", "<p>Hello</p>"},
		{"blank lines split paragraphs", "One.\n\nTwo.", "<p>One.</p><p>Two.</p>"},
		{"already html", "<p>Done</p>", "<p>Done</p>"},
		{"leading whitespace before tag", "  \n<div>x</div>", "  \n<div>x</div>"},
		{"empty", "", "<p></p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapFragment(tt.in))
		})
	}
}

func TestPlainFragmentsAreWrapped(t *testing.T) {
	fake := &fakeLLM{respond: func(prompt string) (string, error) {
		return "First para.\n\nSecond para.", nil
	}}
	a := newAssembler(t, fake)

	out, err := a.Assemble(context.Background(), "q", "french", 1, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>q</h1>\n<p>First para.</p><p>Second para.</p>")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "International", titleCase("international"))
	assert.Equal(t, "Middle Eastern", titleCase("middle EASTERN"))
	assert.Equal(t, "Étoile", titleCase("étoile"))
	assert.Equal(t, "", titleCase(""))
}

func TestHTMLEscaping(t *testing.T) {
	r := recipe.Recipe{Title: `Mac & "Cheese"`, URL: "https://example.com/?a=1&b=2"}
	section := recipeSection(r, "<p>x</p>")

	assert.Contains(t, section, "<h2>Mac &amp; &#34;Cheese&#34;</h2>")
	assert.Contains(t, section, "href='https://example.com/?a=1&amp;b=2'")
}

func TestPlainHTML(t *testing.T) {
	out := PlainHTML(testRecipes()[:2])
	assert.Equal(t,
		"<h2>Spaghetti Carbonara</h2><p>Eggs, pecorino, guanciale.</p><a href=\"https://example.com/carbonara\">Source</a>\n"+
			"<h2>Cacio e Pepe</h2><p>Three ingredients.</p><a href=\"https://example.com/cacio\">Source</a>\n", out)
	assert.Empty(t, PlainHTML(nil))
}

func TestLoadPrompts(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		p, err := LoadPrompts("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPrompts(), p)
	})

	t.Run("partial override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("intro: |\n  Say hello about {{.Query}} ({{.Count}})\n"), 0644))

		p, err := LoadPrompts(path)
		require.NoError(t, err)
		assert.Equal(t, "Say hello about {{.Query}} ({{.Count}})\n", p.Intro)
		assert.Equal(t, DefaultPrompts().Tips, p.Tips)

		fake := &fakeLLM{respond: func(string) (string, error) { return "<p>x</p>", nil }}
		a, err := New(fake, p, WithConcurrency(1))
		require.NoError(t, err)
		_, err = a.Assemble(context.Background(), "soups", "french", 2, nil)
		require.NoError(t, err)
		assert.Equal(t, "Say hello about soups (2)\n", fake.prompts[0])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("intro: [unclosed"), 0644))
		_, err := LoadPrompts(path)
		assert.Error(t, err)
	})

	t.Run("broken template is rejected by New", func(t *testing.T) {
		p := DefaultPrompts()
		p.Tips = "{{.Cuisine"
		_, err := New(&fakeLLM{}, p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tips prompt")
	})
}
