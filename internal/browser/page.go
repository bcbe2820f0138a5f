package browser

import (
	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/shopintel/internal/dom"
)

// LivePage adapts a playwright page to the dom.Page capability consumed by
// the discovery and extraction engines.
type LivePage struct {
	page playwright.Page
}

func NewLivePage(page playwright.Page) *LivePage {
	return &LivePage{page: page}
}

func (p *LivePage) QuerySelectorAll(selector string) ([]dom.Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	els := make([]dom.Element, 0, len(handles))
	for _, h := range handles {
		els = append(els, &liveElement{handle: h})
	}
	return els, nil
}

func (p *LivePage) QuerySelector(selector string) (dom.Element, error) {
	handle, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}
	return &liveElement{handle: handle}, nil
}

func (p *LivePage) Evaluate(script string) (any, error) {
	return p.page.Evaluate(script)
}

type liveElement struct {
	handle playwright.ElementHandle
}

func (e *liveElement) QuerySelector(selector string) (dom.Element, error) {
	handle, err := e.handle.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}
	return &liveElement{handle: handle}, nil
}

func (e *liveElement) Text() (string, error) {
	return e.handle.TextContent()
}

func (e *liveElement) Attribute(name string) (string, error) {
	return e.handle.GetAttribute(name)
}
