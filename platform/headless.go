package platform

// Headless is a Platform with no terminal. An observer bound to it stays
// detached at (0, 0).
type Headless struct{}

func (Headless) Available() bool         { return false }
func (Headless) Size() (int, int)        { return 0, 0 }
func (Headless) Subscribe(func()) func() { return func() {} }
