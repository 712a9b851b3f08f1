package article

import (
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

const (
	imageStyle       = "width: 100%; max-width: 600px; height: auto; border-radius: 8px; margin: 16px 0;"
	placeholderStyle = "width: 100%; max-width: 600px; height: 300px; background: linear-gradient(135deg, #f5f7fa 0%, #c3cfe2 100%); border-radius: 8px; margin: 16px 0; display: flex; align-items: center; justify-content: center; color: #666; font-style: italic;"
)

// WrapFragment makes generated text HTML. Text that already starts with a tag
// is returned unchanged; anything else becomes paragraphs split on blank lines.
func WrapFragment(content string) string {
	if strings.HasPrefix(strings.TrimSpace(content), "<") {
		return content
	}
	return "<p>" + strings.ReplaceAll(content, "\n\n", "</p><p>") + "</p>"
}

func introSection(query, fragment string) string {
	return fmt.Sprintf("<h1>%s</h1>\n%s", html.EscapeString(query), WrapFragment(fragment))
}

func recipeSection(r recipe.Recipe, fragment string) string {
	title := html.EscapeString(r.Title)

	var media string
	if r.HasImage() {
		media = fmt.Sprintf("<img src=\"%s\" alt=\"%s\" style=\"%s\" />\n", html.EscapeString(r.ImageURL), title, imageStyle)
	} else {
		media = fmt.Sprintf("<div class=\"recipe-image-placeholder\" style=\"%s\">Image: %s</div>\n", placeholderStyle, title)
	}

	return fmt.Sprintf("<h2>%s</h2>\n%s%s\n<p><a href='%s'>View Recipe</a></p>",
		title, media, WrapFragment(fragment), html.EscapeString(r.URL))
}

func tipsSection(cuisine, fragment string) string {
	return fmt.Sprintf("<h2>Cooking Tips for %s Cuisine</h2>\n%s", html.EscapeString(titleCase(cuisine)), WrapFragment(fragment))
}

// titleCase upper-cases the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// PlainHTML renders recipes as a simple list without generated prose.
func PlainHTML(recipes []recipe.Recipe) string {
	var sb strings.Builder
	for _, r := range recipes {
		fmt.Fprintf(&sb, "<h2>%s</h2><p>%s</p><a href=\"%s\">Source</a>\n",
			html.EscapeString(r.Title), html.EscapeString(r.Description), html.EscapeString(r.URL))
	}
	return sb.String()
}
