// Package lightbox implements the shared single-photo overlay.
package lightbox

// BodyClass marks the page while the overlay is open.
const BodyClass = "lightbox-open"

// ElementID is the id of the overlay element; it receives focus when opened.
const ElementID = "lightbox"

// Trigger is the metadata attached to a thumbnail or photo card.
type Trigger struct {
	ID      string
	Src     string
	Alt     string
	Caption string
}

// Surface is the display the overlay drives.
type Surface interface {
	SetImage(src, alt string)
	SetCaption(text string, hidden bool)
	SetVisible(visible bool)
	// Focus moves focus to the element with id and reports whether it exists.
	Focus(id string) bool
	SetBodyClass(name string, on bool)
}

// Lightbox tracks whether the overlay is open and which control opened it.
type Lightbox struct {
	surface Surface
	open    bool
	opener  string
}

// New returns a closed lightbox bound to s.
func New(s Surface) *Lightbox {
	return &Lightbox{surface: s}
}

// IsOpen reports whether the overlay is showing.
func (l *Lightbox) IsOpen() bool { return l.open }

// Opener returns the id of the control that opened the overlay.
func (l *Lightbox) Opener() string { return l.opener }

// Open shows t. Re-opening with the trigger already shown is a no-op.
func (l *Lightbox) Open(t Trigger) bool {
	if l.open && l.opener == t.ID {
		return false
	}
	l.surface.SetImage(t.Src, t.Alt)
	l.surface.SetCaption(t.Caption, t.Caption == "")
	l.surface.SetVisible(true)
	l.surface.SetBodyClass(BodyClass, true)
	l.surface.Focus(ElementID)
	l.open = true
	l.opener = t.ID
	return true
}

// Close hides the overlay and returns focus to the opener if it is still on
// the page. Closing a closed lightbox is a no-op.
func (l *Lightbox) Close() bool {
	if !l.open {
		return false
	}
	l.surface.SetImage("", "")
	l.surface.SetCaption("", true)
	l.surface.SetVisible(false)
	if l.opener != "" {
		l.surface.Focus(l.opener)
	}
	l.surface.SetBodyClass(BodyClass, false)
	l.open = false
	l.opener = ""
	return true
}

// HandleKey closes the overlay on Escape.
func (l *Lightbox) HandleKey(key string) bool {
	if key != "Escape" {
		return false
	}
	return l.Close()
}
