package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/drake/winsize/size"
)

// frameKey identifies a rendered size box placed in a screen area.
type frameKey struct {
	Published size.Dimensions
	AreaW     int
	AreaH     int
}

// frameCache memoizes the centered size box by published size and area.
type frameCache struct {
	styles Styles
	cache  *lru.Cache[frameKey, string]
	misses int
}

func newFrameCache(styles Styles, capacity int) *frameCache {
	cache, _ := lru.New[frameKey, string](capacity)
	return &frameCache{styles: styles, cache: cache}
}

// render returns the size box centered in an areaW x areaH region.
func (f *frameCache) render(published size.Dimensions, areaW, areaH int) string {
	key := frameKey{Published: published, AreaW: areaW, AreaH: areaH}
	if s, ok := f.cache.Get(key); ok {
		return s
	}
	f.misses++

	s := f.styles
	dims := lipgloss.JoinHorizontal(lipgloss.Center,
		s.Dimension.Render(fmt.Sprint(published.Width)),
		s.Separator.Render(" x "),
		s.Dimension.Render(fmt.Sprint(published.Height)),
	)
	box := s.Box.Render(lipgloss.JoinVertical(lipgloss.Center,
		dims,
		s.Caption.Render("columns x rows"),
	))
	out := lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, box)

	f.cache.Add(key, out)
	return out
}
