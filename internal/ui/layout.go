package ui

import "time"

const (
	// LayoutCompactWidth is the width below which stat subtitles are hidden.
	LayoutCompactWidth = 100

	// StatCardWidth is the width of one statistics card.
	StatCardWidth = 24

	// ChromeHeight counts the header, page bar, command bar and spacing.
	ChromeHeight = 6
)

const (
	// ToastTTL is how long a notification stays on screen.
	ToastTTL = 4 * time.Second

	// MaxToasts bounds the notification stack; older toasts are dropped.
	MaxToasts = 4
)
