package types

// Settings is replaced wholesale on update.
type Settings struct {
	NotificationsEnabled bool `json:"notificationsEnabled"`
}

func DefaultSettings() Settings {
	return Settings{NotificationsEnabled: true}
}

// BadgeResponse reports the number of usages submitted since the last reset.
type BadgeResponse struct {
	Count int `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
