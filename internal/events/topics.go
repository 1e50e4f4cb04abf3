package events

// Topics emitted by the desktop core. Payloads carry the window id
// plus geometry or boolean state.
const (
	TopicWindowOpen     = "window:open"
	TopicWindowClose    = "window:close"
	TopicWindowFocus    = "window:focus"
	TopicWindowBlur     = "window:blur"
	TopicWindowMinimize = "window:minimize"
	TopicWindowMaximize = "window:maximize"
	TopicWindowRestore  = "window:restore"
	TopicWindowResize   = "window:resize"
	TopicWindowMove     = "window:move"

	TopicDragStart = "drag:start"
	TopicDragEnd   = "drag:end"

	TopicAppError    = "app:error"
	TopicDialogError = "dialog:error"
	TopicStateChange = "state:change"

	TopicAchievement = "desktop:achievement"
)

// Stream lists every topic forwarded to connected host surfaces.
var Stream = []string{
	TopicWindowOpen,
	TopicWindowClose,
	TopicWindowFocus,
	TopicWindowBlur,
	TopicWindowMinimize,
	TopicWindowMaximize,
	TopicWindowRestore,
	TopicWindowResize,
	TopicWindowMove,
	TopicDragStart,
	TopicDragEnd,
	TopicAppError,
	TopicDialogError,
	TopicStateChange,
	TopicAchievement,
}
