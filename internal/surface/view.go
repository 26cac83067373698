// Package surface models the rendering surfaces of the player as a tree of
// views. It only tracks attachment, z-order, bounds and visibility; drawing is
// left to whatever toolkit hosts the tree.
package surface

import "sync"

// Rect is a view frame in parent coordinates
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// View is a node of the surface tree. Children are ordered back to front.
type View struct {
	mu       sync.RWMutex
	name     string
	parent   *View
	children []*View
	frame    Rect
	fill     bool
	hidden   bool
}

// NewView creates a detached view
func NewView(name string) *View {
	return &View{name: name}
}

// Name returns the view name
func (v *View) Name() string {
	return v.name
}

// Parent returns the view this one is attached to, or nil
func (v *View) Parent() *View {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.parent
}

// Children returns the attached children, back to front
func (v *View) Children() []*View {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]*View(nil), v.children...)
}

// AddChild attaches child on top of the existing children. A child attached
// elsewhere is moved; a child already attached here keeps its position.
func (v *View) AddChild(child *View) {
	if child == nil || child == v {
		return
	}
	if child.Parent() == v {
		return
	}
	child.RemoveFromParent()

	v.mu.Lock()
	v.children = append(v.children, child)
	v.mu.Unlock()

	child.mu.Lock()
	child.parent = v
	child.mu.Unlock()
}

// AddChildMatchingBounds attaches child and makes it fill this view
func (v *View) AddChildMatchingBounds(child *View) {
	v.AddChild(child)
	if child == nil {
		return
	}

	child.mu.Lock()
	child.fill = true
	child.mu.Unlock()
	child.SetFrame(Rect{Width: v.Frame().Width, Height: v.Frame().Height})
}

// RemoveFromParent detaches the view. Detached views are left untouched.
func (v *View) RemoveFromParent() {
	parent := v.Parent()
	if parent == nil {
		return
	}

	parent.mu.Lock()
	for i, c := range parent.children {
		if c == v {
			parent.children = append(parent.children[:i:i], parent.children[i+1:]...)
			break
		}
	}
	parent.mu.Unlock()

	v.mu.Lock()
	v.parent = nil
	v.mu.Unlock()
}

// SendToBack moves child below every other child
func (v *View) SendToBack(child *View) {
	v.mu.Lock()
	defer v.mu.Unlock()

	i := v.indexLocked(child)
	if i <= 0 {
		return
	}
	reordered := make([]*View, 0, len(v.children))
	reordered = append(reordered, child)
	reordered = append(reordered, v.children[:i]...)
	reordered = append(reordered, v.children[i+1:]...)
	v.children = reordered
}

// BringToFront moves child above every other child
func (v *View) BringToFront(child *View) {
	v.mu.Lock()
	defer v.mu.Unlock()

	i := v.indexLocked(child)
	if i < 0 || i == len(v.children)-1 {
		return
	}
	reordered := make([]*View, 0, len(v.children))
	reordered = append(reordered, v.children[:i]...)
	reordered = append(reordered, v.children[i+1:]...)
	reordered = append(reordered, child)
	v.children = reordered
}

// IndexOf returns the z-index of child (0 is the back), or -1
func (v *View) IndexOf(child *View) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.indexLocked(child)
}

func (v *View) indexLocked(child *View) int {
	for i, c := range v.children {
		if c == child {
			return i
		}
	}
	return -1
}

// SetFrame updates the frame; children filling this view follow it
func (v *View) SetFrame(frame Rect) {
	v.mu.Lock()
	v.frame = frame
	children := append([]*View(nil), v.children...)
	v.mu.Unlock()

	for _, c := range children {
		c.mu.RLock()
		fill := c.fill
		c.mu.RUnlock()
		if fill {
			c.SetFrame(Rect{Width: frame.Width, Height: frame.Height})
		}
	}
}

// Frame returns the current frame
func (v *View) Frame() Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.frame
}

// SetHidden shows or hides the view
func (v *View) SetHidden(hidden bool) {
	v.mu.Lock()
	v.hidden = hidden
	v.mu.Unlock()
}

// Hidden reports whether the view is hidden
func (v *View) Hidden() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.hidden
}
