package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
)

// ChromePage drives a real browser tab through the DevTools protocol.
type ChromePage struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewChromePage starts a browser. The browser lives until Close or until
// parent is cancelled.
func NewChromePage(parent context.Context, headless bool) (*ChromePage, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", headless))
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tab, cancelTab := chromedp.NewContext(allocCtx)

	// first Run starts the browser
	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return &ChromePage{tab: tab, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

// Close shuts the browser down.
func (p *ChromePage) Close() {
	p.cancelTab()
	p.cancelAlloc()
}

// run executes actions on the tab, bounded by ctx's deadline and cancellation.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tab)
	defer cancel()
	if dl, ok := ctx.Deadline(); ok {
		var cancelDL context.CancelFunc
		runCtx, cancelDL = context.WithDeadline(runCtx, dl)
		defer cancelDL()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (p *ChromePage) Open(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *ChromePage) TextControl(ctx context.Context, label string) (Control, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(textFieldXPath(label), &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	for _, n := range nodes {
		visible, err := p.rendered(ctx, n.NodeID)
		if err != nil {
			return nil, err
		}
		if visible {
			return &chromeControl{page: p, ids: []cdp.NodeID{n.NodeID}}, nil
		}
	}
	return nil, ErrNotFound
}

// rendered reports whether the node has a layout box.
func (p *ChromePage) rendered(ctx context.Context, id cdp.NodeID) (bool, error) {
	var visible bool
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.GetBoxModel().WithNodeID(id).Do(ctx)
		visible = err == nil
		return nil
	}))
	return visible, err
}

func (p *ChromePage) ChoiceControl(ctx context.Context, label, value string) (Control, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(choiceXPath(label, value), &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	return &chromeControl{page: p, ids: []cdp.NodeID{nodes[0].NodeID}}, nil
}

func (p *ChromePage) SubmitControl(ctx context.Context, labels []string) (Control, error) {
	xp := submitXPath(labels)
	var nodes []*cdp.Node
	err := p.run(ctx,
		chromedp.WaitVisible(xp, chromedp.BySearch),
		chromedp.Nodes(xp, &nodes, chromedp.BySearch),
	)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	return &chromeControl{page: p, ids: []cdp.NodeID{nodes[0].NodeID}}, nil
}

type chromeControl struct {
	page *ChromePage
	ids  []cdp.NodeID
}

func (c *chromeControl) Fill(ctx context.Context, value string) error {
	return c.page.run(ctx,
		chromedp.Clear(c.ids, chromedp.ByNodeID),
		chromedp.SendKeys(c.ids, value, chromedp.ByNodeID),
	)
}

func (c *chromeControl) Reveal(ctx context.Context) error {
	return c.page.run(ctx, chromedp.ScrollIntoView(c.ids, chromedp.ByNodeID))
}

func (c *chromeControl) Click(ctx context.Context) error {
	return c.page.run(ctx, chromedp.Click(c.ids, chromedp.ByNodeID))
}

// xpathLiteral quotes s as an XPath 1.0 string literal.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(quoted, `, "'", `) + ")"
}

// containersXPath selects every question whose heading contains label.
func containersXPath(label string) string {
	return fmt.Sprintf("//div[@role='listitem'][.//div[@role='heading'][contains(., %s)]]", xpathLiteral(label))
}

func containerXPath(label string) string {
	return "(" + containersXPath(label) + ")[1]"
}

func textFieldXPath(label string) string {
	types := make([]string, len(textInputTypes))
	for i, t := range textInputTypes {
		types[i] = fmt.Sprintf("@type='%s'", t)
	}
	return fmt.Sprintf("%s//*[self::textarea or self::input[not(@type) or %s]]",
		containerXPath(label), strings.Join(types, " or "))
}

func choiceXPath(label, value string) string {
	v := xpathLiteral(value)
	return fmt.Sprintf("%s//*[(self::div[@role='radio' or @role='checkbox'] and @aria-label=%s) or (self::span and text()=%s)]",
		containersXPath(label), v, v)
}

func submitXPath(labels []string) string {
	conds := make([]string, len(labels))
	for i, l := range labels {
		conds[i] = "text()=" + xpathLiteral(l)
	}
	return fmt.Sprintf("//span[%s]/ancestor::div[@role='button']", strings.Join(conds, " or "))
}
