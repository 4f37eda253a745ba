package intercept

import (
	"context"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// ClipboardItem holds one clipboard entry keyed by MIME type.
type ClipboardItem struct {
	Data map[string][]byte
}

type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	Read(ctx context.Context) ([]ClipboardItem, error)
	WriteText(ctx context.Context, text string) error
	Write(ctx context.Context, items []ClipboardItem) error
}

// WrapClipboard reports reads that yielded data and writes that succeeded.
func (p *Page) WrapClipboard(inner Clipboard) Clipboard {
	return &clipboard{page: p, inner: inner}
}

type clipboard struct {
	page  *Page
	inner Clipboard
}

func (c *clipboard) ReadText(ctx context.Context) (string, error) {
	text, err := c.inner.ReadText(ctx)
	if err == nil && text != "" {
		c.page.signal(types.KindClipboardRead, types.ActionAccessed, c.page.nowMillis())
	}
	return text, err
}

func (c *clipboard) Read(ctx context.Context) ([]ClipboardItem, error) {
	items, err := c.inner.Read(ctx)
	if err == nil && len(items) > 0 {
		c.page.signal(types.KindClipboardRead, types.ActionAccessed, c.page.nowMillis())
	}
	return items, err
}

func (c *clipboard) WriteText(ctx context.Context, text string) error {
	err := c.inner.WriteText(ctx, text)
	if err == nil {
		c.page.signal(types.KindClipboardWrite, types.ActionAccessed, c.page.nowMillis())
	}
	return err
}

func (c *clipboard) Write(ctx context.Context, items []ClipboardItem) error {
	err := c.inner.Write(ctx, items)
	if err == nil {
		c.page.signal(types.KindClipboardWrite, types.ActionAccessed, c.page.nowMillis())
	}
	return err
}
