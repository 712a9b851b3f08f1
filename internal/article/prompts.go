package article

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Prompts holds the template text for each article section.
// Templates see a promptData value.
type Prompts struct {
	Intro      string `yaml:"intro"`
	Recipe     string `yaml:"recipe"`
	Tips       string `yaml:"tips"`
	Conclusion string `yaml:"conclusion"`
}

type promptData struct {
	Query       string
	Cuisine     string
	Count       int
	Title       string
	Description string
}

// DefaultPrompts returns the built-in prompt templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Intro: `Write a compelling 2-3 paragraph introduction for an article titled "{{.Query}}".

Create anticipation and set the scene for {{.Cuisine}} cuisine. Mention what makes {{.Cuisine}} food special and what readers will discover in this collection of {{.Count}} recipes.

Write in an engaging, warm tone that makes readers excited to cook these dishes.

Format the response as HTML paragraphs using <p> tags.
`,
		Recipe: `Write an engaging 2 paragraph section about this {{.Cuisine}} recipe:

Title: {{.Title}}
Description: {{.Description}}

Include:
- Why this recipe is special
- Cooking tips or techniques
- Cultural context or flavor notes
- What makes it authentic {{.Cuisine}}

Write in engaging food-blog style, keep it professional and New York Times style, no buzzwords.

Format the response as HTML paragraphs using <p> tags.
`,
		Tips: `Write 1-2 paragraphs of general cooking tips for {{.Cuisine}} cuisine.

Focus on:
- Essential techniques
- Key ingredients
- Common mistakes to avoid
- Pro tips for authentic flavor

Write in a helpful, encouraging tone that builds confidence in home cooks.

Format the response as HTML paragraphs using <p> tags.
`,
		Conclusion: `Write a compelling conclusion paragraph for an article about {{.Query}}.

Tie everything together and encourage readers to try these {{.Cuisine}} recipes. End on an inspiring note that makes them excited to start cooking.

Keep it warm and encouraging.

Format the response as HTML paragraphs using <p> tags.
`,
	}
}

// LoadPrompts reads prompt overrides from a YAML file. Sections missing from
// the file keep their default template.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var overrides Prompts
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return Prompts{}, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	if overrides.Intro != "" {
		prompts.Intro = overrides.Intro
	}
	if overrides.Recipe != "" {
		prompts.Recipe = overrides.Recipe
	}
	if overrides.Tips != "" {
		prompts.Tips = overrides.Tips
	}
	if overrides.Conclusion != "" {
		prompts.Conclusion = overrides.Conclusion
	}

	log.Debug("Loaded prompt overrides", "path", path)
	return prompts, nil
}

// templates is the parsed form of Prompts.
type templates struct {
	intro      *template.Template
	recipe     *template.Template
	tips       *template.Template
	conclusion *template.Template
}

func (p Prompts) parse() (*templates, error) {
	var t templates
	for _, s := range []struct {
		name string
		text string
		dst  **template.Template
	}{
		{SectionIntro, p.Intro, &t.intro},
		{SectionRecipe, p.Recipe, &t.recipe},
		{SectionTips, p.Tips, &t.tips},
		{SectionConclusion, p.Conclusion, &t.conclusion},
	} {
		tmpl, err := template.New(s.name).Option("missingkey=error").Parse(s.text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s prompt: %w", s.name, err)
		}
		*s.dst = tmpl
	}
	return &t, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
