package transport

import (
	"net/url"
	"sync"
)

// PageInfo exposes the page context read at the moment a signal is accepted.
type PageInfo interface {
	Origin() string
	URL() string
	Title() string
	Visible() bool
}

// Document is a mutable PageInfo for hosts that push page state in rather
// than answer queries. It is safe for concurrent use.
type Document struct {
	mu      sync.RWMutex
	rawURL  string
	host    string
	title   string
	visible bool
}

// NewDocument returns a visible document at rawURL.
func NewDocument(rawURL, title string) *Document {
	d := &Document{title: title, visible: true}
	d.setURL(rawURL)
	return d
}

func (d *Document) setURL(rawURL string) {
	d.rawURL = rawURL
	d.host = ""
	if u, err := url.Parse(rawURL); err == nil {
		d.host = u.Host
	}
}

func (d *Document) Origin() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.host
}

func (d *Document) URL() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rawURL
}

func (d *Document) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

func (d *Document) Visible() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.visible
}

func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

func (d *Document) SetVisible(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = visible
}

// Navigate updates the document URL. Callers should start a new page
// context afterwards; recency state does not survive navigation.
func (d *Document) Navigate(rawURL, title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setURL(rawURL)
	d.title = title
}
