// Package dom abstracts the minimal page-querying capability the discovery
// and extraction engines need, so the same logic runs against a live
// playwright page or a static goquery document.
package dom

import "errors"

// ErrEvaluateUnsupported is returned by page implementations that cannot
// execute scripts in page context.
var ErrEvaluateUnsupported = errors.New("dom: evaluate not supported")

// Page is one loaded web page. QuerySelector returns (nil, nil) when no
// element matches; an error means the selector itself could not be applied.
type Page interface {
	QuerySelectorAll(selector string) ([]Element, error)
	QuerySelector(selector string) (Element, error)
	Evaluate(script string) (any, error)
}

// Element is one DOM element handle scoped for sub-queries.
type Element interface {
	QuerySelector(selector string) (Element, error)
	Text() (string, error)
	Attribute(name string) (string, error)
}
