package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconMail    = "" //
	IconBell    = "" //
	IconLink    = "" //
	IconDot     = "•"
	IconPending = "○"
	IconActive  = "◐"
	IconDone    = "●"
)

// Notification severity icons.
var (
	IconNotifySuccess = "✓"
	IconNotifyWarning = "!"
	IconNotifyError   = "✗"
	IconNotifyInfo    = "i"
)

// Connection state icons.
var (
	IconConnOnline  = "●"
	IconConnPending = "◌"
	IconConnOffline = "○"
)
