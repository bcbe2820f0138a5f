package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a Page over a static HTML string, backed by goquery. It
// cannot execute page scripts, so Evaluate always fails and callers relying
// on the script fallback must treat that as "fallback unavailable".
type Document struct {
	doc *goquery.Document
}

// NewDocument parses HTML into a queryable document.
func NewDocument(html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{doc: doc}, nil
}

func (d *Document) QuerySelectorAll(selector string) (els []Element, err error) {
	defer recoverSelector(selector, &err)
	d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		els = append(els, &docElement{sel: sel})
	})
	return els, nil
}

func (d *Document) QuerySelector(selector string) (el Element, err error) {
	defer recoverSelector(selector, &err)
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, nil
	}
	return &docElement{sel: sel}, nil
}

func (d *Document) Evaluate(string) (any, error) {
	return nil, ErrEvaluateUnsupported
}

type docElement struct {
	sel *goquery.Selection
}

func (e *docElement) QuerySelector(selector string) (el Element, err error) {
	defer recoverSelector(selector, &err)
	sel := e.sel.Find(selector).First()
	if sel.Length() == 0 {
		return nil, nil
	}
	return &docElement{sel: sel}, nil
}

func (e *docElement) Text() (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e *docElement) Attribute(name string) (string, error) {
	value, _ := e.sel.Attr(name)
	return value, nil
}

// goquery panics on selectors cascadia cannot compile; candidate selectors
// come from heuristic lists and criterion keys, so surface that as an error
// instead.
func recoverSelector(selector string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("invalid selector %q: %v", selector, r)
	}
}
