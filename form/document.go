package form

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Action is an interaction recorded by a DocumentPage.
type Action struct {
	Kind  string // fill, reveal or click
	Node  string
	Value string
}

// DocumentPage evaluates a form statically, without a browser. It applies the
// same matching rules as ChromePage and records the interactions instead of
// dispatching them; fills are written to the value attribute and clicks on
// options set aria-checked.
type DocumentPage struct {
	client  *http.Client
	doc     *goquery.Document
	Actions []Action
}

// NewDocumentPage returns a page that downloads the form on Open.
func NewDocumentPage(client *http.Client) *DocumentPage {
	if client == nil {
		client = http.DefaultClient
	}
	return &DocumentPage{client: client}
}

// ParseDocumentPage returns a page preloaded from r; Open is then a no-op.
func ParseDocumentPage(r io.Reader) (*DocumentPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return &DocumentPage{doc: doc}, nil
}

func (p *DocumentPage) Open(ctx context.Context, url string) error {
	if p.client == nil {
		if p.doc == nil {
			return fmt.Errorf("no document loaded")
		}
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	p.doc = doc
	return nil
}

// containers returns every question whose heading contains label, in
// document order.
func (p *DocumentPage) containers(label string) *goquery.Selection {
	if p.doc == nil {
		return nil
	}
	found := p.doc.Find(`div[role="listitem"]`).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(`div[role="heading"]`).FilterFunction(func(_ int, h *goquery.Selection) bool {
			return strings.Contains(h.Text(), label)
		}).Length() > 0
	})
	if found.Length() == 0 {
		return nil
	}
	return found
}

// container returns the first question whose heading contains label.
func (p *DocumentPage) container(label string) *goquery.Selection {
	if c := p.containers(label); c != nil {
		return c.First()
	}
	return nil
}

func (p *DocumentPage) TextControl(_ context.Context, label string) (Control, error) {
	c := p.container(label)
	if c == nil {
		return nil, ErrNotFound
	}
	field := c.Find("input, textarea").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return isTextField(s) && isVisible(s)
	}).First()
	if field.Length() == 0 {
		return nil, ErrNotFound
	}
	return &documentControl{page: p, sel: field}, nil
}

func (p *DocumentPage) ChoiceControl(_ context.Context, label, value string) (Control, error) {
	c := p.containers(label)
	if c == nil {
		return nil, ErrNotFound
	}
	opt := c.Find(`div[role="radio"], div[role="checkbox"], span`).FilterFunction(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "span" {
			return hasOwnText(s, value)
		}
		aria, _ := s.Attr("aria-label")
		return aria == value
	}).First()
	if opt.Length() == 0 {
		return nil, ErrNotFound
	}
	return &documentControl{page: p, sel: opt}, nil
}

func (p *DocumentPage) SubmitControl(ctx context.Context, labels []string) (Control, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.doc == nil {
		return nil, ErrNotFound
	}
	btn := p.doc.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return slices.ContainsFunc(labels, func(l string) bool { return hasOwnText(s, l) })
	}).Closest(`div[role="button"]`).First()
	if btn.Length() == 0 {
		return nil, ErrNotFound
	}
	return &documentControl{page: p, sel: btn}, nil
}

// Clicks returns the number of recorded clicks on nodes matching selector.
func (p *DocumentPage) Clicks(selector string) int {
	n := 0
	for _, a := range p.Actions {
		if a.Kind == "click" && a.Node == selector {
			n++
		}
	}
	return n
}

type documentControl struct {
	page *DocumentPage
	sel  *goquery.Selection
}

func (c *documentControl) Fill(_ context.Context, value string) error {
	c.sel.SetAttr("value", value)
	if goquery.NodeName(c.sel) == "textarea" {
		c.sel.SetText(value)
	}
	c.record("fill", value)
	return nil
}

func (c *documentControl) Reveal(context.Context) error {
	c.record("reveal", "")
	return nil
}

func (c *documentControl) Click(context.Context) error {
	if role, _ := c.sel.Attr("role"); role == "radio" || role == "checkbox" {
		c.sel.SetAttr("aria-checked", "true")
	}
	c.record("click", "")
	return nil
}

func (c *documentControl) record(kind, value string) {
	c.page.Actions = append(c.page.Actions, Action{Kind: kind, Node: describe(c.sel), Value: value})
}

// describe names a node as tag#id, falling back to tag[aria-label] or tag.
func describe(s *goquery.Selection) string {
	name := goquery.NodeName(s)
	if id, ok := s.Attr("id"); ok && id != "" {
		return name + "#" + id
	}
	if aria, ok := s.Attr("aria-label"); ok && aria != "" {
		return fmt.Sprintf("%s[aria-label=%q]", name, aria)
	}
	return name
}

func isTextField(s *goquery.Selection) bool {
	if goquery.NodeName(s) == "textarea" {
		return true
	}
	typ, ok := s.Attr("type")
	if !ok {
		return true
	}
	return slices.Contains(textInputTypes, strings.ToLower(typ))
}

// isVisible approximates rendering for a static document.
func isVisible(s *goquery.Selection) bool {
	for n := s; n.Length() > 0; n = n.Parent() {
		if _, hidden := n.Attr("hidden"); hidden {
			return false
		}
		if aria, _ := n.Attr("aria-hidden"); aria == "true" {
			return false
		}
		style, _ := n.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

// hasOwnText reports whether one of the direct text children equals text.
func hasOwnText(s *goquery.Selection, text string) bool {
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && c.Data == text {
				return true
			}
		}
	}
	return false
}
