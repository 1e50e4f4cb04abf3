package window

// pointerTrack gives drag and resize sessions identical
// pointer-device semantics: one exclusive session, one contact point.
// Mouse streams always carry a single contact; a touch stream that
// gains a second contact aborts the session.
type pointerTrack struct {
	windowID string
	contacts int
}

func newPointerTrack(windowID string) pointerTrack {
	return pointerTrack{windowID: windowID, contacts: 1}
}

// addContact registers another simultaneous contact point and reports
// whether the session survives it.
func (p *pointerTrack) addContact() bool {
	p.contacts++
	return p.contacts <= 1
}
