package intercept

import "github.com/BrandonDHaskell/permwatch/internal/permwatch/types"

type NotificationOptions struct {
	Body string
	Icon string
	Tag  string
}

type Notification interface {
	Close()
}

type NotificationFactory interface {
	// Permission is "granted", "denied" or "default".
	Permission() string
	New(title string, opts NotificationOptions) (Notification, error)
}

// WrapNotifications reports each notification constructed while permission
// is granted. The signal is timestamped when the constructor is invoked,
// before delegating, and dropped if the underlying constructor fails.
func (p *Page) WrapNotifications(inner NotificationFactory) NotificationFactory {
	return &notifications{page: p, inner: inner}
}

type notifications struct {
	page  *Page
	inner NotificationFactory
}

func (n *notifications) Permission() string {
	return n.inner.Permission()
}

func (n *notifications) New(title string, opts NotificationOptions) (Notification, error) {
	invokedAt := n.page.nowMillis()

	notif, err := n.inner.New(title, opts)
	if err != nil {
		return notif, err
	}
	if n.inner.Permission() == "granted" {
		n.page.signal(types.KindNotifications, types.ActionShown, invokedAt)
	}
	return notif, nil
}
