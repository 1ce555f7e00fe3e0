package corpus

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

var excessiveBlankLines = regexp.MustCompile(`\n{3,}`)

// HTMLConverter converts HTML corpus files to markdown so the
// narrative extractor sees headings and sentences instead of markup.
type HTMLConverter struct {
	converter *md.Converter
}

// NewHTMLConverter creates a converter with GitHub-flavored output.
func NewHTMLConverter() *HTMLConverter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &HTMLConverter{converter: converter}
}

// Convert transforms HTML content to cleaned markdown.
// Script, style, and chrome elements are stripped before conversion.
func (c *HTMLConverter) Convert(content []byte) (string, error) {
	cleaned := stripChrome(content)

	markdown, err := c.converter.ConvertString(cleaned)
	if err != nil {
		return "", err
	}

	markdown = excessiveBlankLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown), nil
}

// stripChrome removes non-content elements from an HTML document and
// returns the body rendered back to HTML. Falls back to the raw input
// when parsing fails.
func stripChrome(content []byte) string {
	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return string(content)
	}

	drop := map[string]bool{
		"script": true, "style": true, "noscript": true,
		"nav": true, "header": true, "footer": true, "aside": true,
		"iframe": true, "form": true,
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && drop[n.Data] {
			toRemove = append(toRemove, n)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(doc)
	for _, n := range toRemove {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	if body := findBody(doc); body != nil {
		var sb strings.Builder
		if err := html.Render(&sb, body); err == nil {
			return sb.String()
		}
	}
	return string(content)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findBody(child); found != nil {
			return found
		}
	}
	return nil
}
