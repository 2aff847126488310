package form

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testForm = `<html><body>
<div role="list">
  <div role="listitem">
    <div role="heading">Name <span>*</span></div>
    <input type="hidden" name="entry.1_sentinel">
    <input type="text" id="name" name="entry.1">
  </div>
  <div role="listitem">
    <div role="heading">Color</div>
    <div role="radiogroup">
      <div role="radio" aria-label="Red" id="red"></div>
      <div role="radio" aria-label="Blue" id="blue"></div>
    </div>
  </div>
  <div role="listitem">
    <div role="heading">Favourite Color</div>
    <div role="radio" aria-label="Green" id="green"></div>
  </div>
  <div role="listitem">
    <div role="heading">Toppings</div>
    <div role="checkbox" id="cheese"><span>Cheese</span></div>
  </div>
  <div role="listitem">
    <div role="heading">Comments</div>
    <textarea id="comments" style="display: none"></textarea>
    <textarea id="comments-visible"></textarea>
  </div>
</div>
<div role="button" id="submit"><span><span>Submit</span></span></div>
</body></html>`

func newTestPage(t *testing.T) *DocumentPage {
	t.Helper()
	p, err := ParseDocumentPage(strings.NewReader(testForm))
	require.NoError(t, err)
	return p
}

func testConfig() DriverConfig {
	return DriverConfig{
		SubmitLabels:  []string{"Надіслати", "Submit", "Отправить"},
		SubmitTimeout: time.Second,
	}
}

func TestLoadAnswers(t *testing.T) {
	in := "question,answer\n" +
		"Name,Alice\n" +
		"   ,ignored\n" +
		"lonely\n" +
		"\"Color\", Blue \n" +
		"Name,Again\n" +
		"Comments,\"multi, part\"\n"

	got, err := LoadAnswers(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Answer{
		{Label: "Name", Value: "Alice"},
		{Label: "Color", Value: "Blue"},
		{Label: "Name", Value: "Again"},
		{Label: "Comments", Value: "multi, part"},
	}, got)
}

func TestLoadAnswersFileMissing(t *testing.T) {
	_, err := LoadAnswersFile(filepath.Join(t.TempDir(), "answers.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveTextField(t *testing.T) {
	p := newTestPage(t)
	r := NewResolver(p, 0, nil)

	require.True(t, r.ResolveAndFill(context.Background(), "Name", "Alice"))
	v, _ := p.doc.Find("#name").Attr("value")
	assert.Equal(t, "Alice", v)
	_, sentinelFilled := p.doc.Find(`input[name="entry.1_sentinel"]`).Attr("value")
	assert.False(t, sentinelFilled)
}

func TestResolveSkipsInvisibleField(t *testing.T) {
	p := newTestPage(t)
	r := NewResolver(p, 0, nil)

	require.True(t, r.ResolveAndFill(context.Background(), "Comments", "great"))
	assert.Equal(t, "great", p.doc.Find("#comments-visible").Text())
	assert.Empty(t, p.doc.Find("#comments").Text())
}

func TestResolveChoice(t *testing.T) {
	p := newTestPage(t)
	r := NewResolver(p, 0, nil)

	require.True(t, r.ResolveAndFill(context.Background(), "Color", "Blue"))
	checked, _ := p.doc.Find("#blue").Attr("aria-checked")
	assert.Equal(t, "true", checked)
	_, redChecked := p.doc.Find("#red").Attr("aria-checked")
	assert.False(t, redChecked)

	require.Len(t, p.Actions, 2)
	assert.Equal(t, "reveal", p.Actions[0].Kind)
	assert.Equal(t, Action{Kind: "click", Node: "div#blue"}, p.Actions[1])
}

func TestResolveChoiceBySpanText(t *testing.T) {
	p := newTestPage(t)
	r := NewResolver(p, 0, nil)

	require.True(t, r.ResolveAndFill(context.Background(), "Toppings", "Cheese"))
	assert.Equal(t, 1, p.Clicks("span"))
}

func TestResolveUnmatched(t *testing.T) {
	p := newTestPage(t)
	r := NewResolver(p, 0, nil)
	ctx := context.Background()

	assert.False(t, r.ResolveAndFill(ctx, "Address", "Main street"))
	assert.False(t, r.ResolveAndFill(ctx, "Color", "Purple"))
	assert.False(t, r.ResolveAndFill(ctx, "Color", "blue"))
	assert.Empty(t, p.Actions)
}

func TestTextLabelBindsFirstContainer(t *testing.T) {
	p, err := ParseDocumentPage(strings.NewReader(`
<div role="listitem"><div role="heading">Name</div><input id="name"></div>
<div role="listitem"><div role="heading">Name of your pet</div><input id="pet"></div>`))
	require.NoError(t, err)
	r := NewResolver(p, 0, nil)

	require.True(t, r.ResolveAndFill(context.Background(), "Name", "Alice"))
	v, _ := p.doc.Find("#name").Attr("value")
	assert.Equal(t, "Alice", v)
	_, petFilled := p.doc.Find("#pet").Attr("value")
	assert.False(t, petFilled)
}

func TestChoiceSearchesEveryMatchingContainer(t *testing.T) {
	p, err := ParseDocumentPage(strings.NewReader(`
<div role="listitem"><div role="heading">Favourite Color</div>
  <div role="radio" aria-label="Red" id="fav-red"></div>
</div>
<div role="listitem"><div role="heading">Color</div>
  <div role="radio" aria-label="Red" id="red"></div>
  <div role="radio" aria-label="Blue" id="blue"></div>
</div>`))
	require.NoError(t, err)
	r := NewResolver(p, 0, nil)
	ctx := context.Background()

	require.True(t, r.ResolveAndFill(ctx, "Color", "Blue"))
	checked, _ := p.doc.Find("#blue").Attr("aria-checked")
	assert.Equal(t, "true", checked)

	// the first matching option in document order wins
	require.True(t, r.ResolveAndFill(ctx, "Color", "Red"))
	assert.Equal(t, 1, p.Clicks("div#fav-red"))
	assert.Zero(t, p.Clicks("div#red"))
}

func TestResolverWaitsBeforeClick(t *testing.T) {
	p := newTestPage(t)
	r := NewResolver(p, 20*time.Millisecond, nil)

	start := time.Now()
	require.True(t, r.ResolveAndFill(context.Background(), "Color", "Red"))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSubmitEndToEnd(t *testing.T) {
	p := newTestPage(t)
	d := NewDriver(p, testConfig(), nil)

	answers, err := LoadAnswers(strings.NewReader("q,a\nName,Alice\nColor,Blue\n"))
	require.NoError(t, err)

	rep, err := d.Submit(context.Background(), "", answers)
	require.NoError(t, err)

	assert.True(t, rep.Submitted)
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, answers, rep.Resolved)
	assert.Empty(t, rep.Unresolved)

	v, _ := p.doc.Find("#name").Attr("value")
	assert.Equal(t, "Alice", v)
	checked, _ := p.doc.Find("#blue").Attr("aria-checked")
	assert.Equal(t, "true", checked)
	assert.Equal(t, 1, p.Clicks("div#submit"))
}

func TestSubmitContinuesPastUnresolved(t *testing.T) {
	p := newTestPage(t)
	d := NewDriver(p, testConfig(), nil)

	rep, err := d.Submit(context.Background(), "", []Answer{
		{Label: "Missing", Value: "x"},
		{Label: "Name", Value: ""},
		{Label: "Color", Value: "Red"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Answer{{Label: "Missing", Value: "x"}}, rep.Unresolved)
	assert.Equal(t, []Answer{{Label: "Name", Value: ""}}, rep.Skipped)
	assert.Equal(t, []Answer{{Label: "Color", Value: "Red"}}, rep.Resolved)
	assert.True(t, rep.Submitted)
}

func TestSubmitWithoutButton(t *testing.T) {
	p, err := ParseDocumentPage(strings.NewReader(`<div role="listitem"><div role="heading">Name</div><input></div>`))
	require.NoError(t, err)
	d := NewDriver(p, testConfig(), nil)

	rep, err := d.Submit(context.Background(), "", []Answer{{Label: "Name", Value: "Alice"}})
	require.NoError(t, err)
	assert.False(t, rep.Submitted)
	assert.Len(t, rep.Resolved, 1)
}

type failingPage struct{ Page }

func (failingPage) Open(context.Context, string) error { return errors.New("navigation failed") }

func TestSubmitOpenFailure(t *testing.T) {
	d := NewDriver(failingPage{}, testConfig(), nil)
	_, err := d.Submit(context.Background(), "https://example.com", nil)
	assert.Error(t, err)
}

func TestDocumentPageFetchesForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testForm))
	}))
	defer srv.Close()

	p := NewDocumentPage(srv.Client())
	d := NewDriver(p, testConfig(), nil)
	rep, err := d.Submit(context.Background(), srv.URL, []Answer{{Label: "Name", Value: "Bob"}})
	require.NoError(t, err)
	assert.True(t, rep.Submitted)
	assert.Len(t, rep.Resolved, 1)
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, "'plain'", xpathLiteral("plain"))
	assert.Equal(t, `"it's"`, xpathLiteral("it's"))
	assert.Equal(t, `concat('say "it', "'", 's"')`, xpathLiteral(`say "it's"`))
}

func TestXPaths(t *testing.T) {
	assert.Equal(t,
		"(//div[@role='listitem'][.//div[@role='heading'][contains(., 'Name')]])[1]",
		containerXPath("Name"))
	assert.Contains(t, textFieldXPath("Name"), "self::textarea or self::input[not(@type) or @type='text'")
	assert.Contains(t, choiceXPath("Color", "Blue"), "@aria-label='Blue') or (self::span and text()='Blue')")
	assert.True(t, strings.HasPrefix(choiceXPath("Color", "Blue"), "//div[@role='listitem']"))
	assert.NotContains(t, choiceXPath("Color", "Blue"), ")[1]")
	assert.Equal(t,
		"//span[text()='Submit' or text()='Надіслати']/ancestor::div[@role='button']",
		submitXPath([]string{"Submit", "Надіслати"}))
}
