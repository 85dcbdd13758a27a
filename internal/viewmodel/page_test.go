package viewmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/twinview/internal/locator"
	"github.com/zjrosen/twinview/internal/viewmodel"
)

func TestPages_ResolveThroughRegistry(t *testing.T) {
	entries := []locator.Entry{
		{Name: "Home", Path: "/home.html"},
		{Name: "Person", Path: "/person.html"},
		{Name: "Person", ID: "detail", Path: "/person-detail.html"},
	}
	reg := locator.NewRegistry(entries...)
	pages := viewmodel.Pages(entries)
	require.Len(t, pages, 3)

	for i, p := range pages {
		var id string
		if len(p.Options()) > 0 {
			id = p.ID
		}
		path, ok := reg.Solve(p, id)
		require.True(t, ok, p.Label())
		require.Equal(t, entries[i].Path, path)
	}
}

func TestPage_Label(t *testing.T) {
	require.Equal(t, "Home", (&viewmodel.Page{Name: "Home"}).Label())
	require.Equal(t, "Person/detail", (&viewmodel.Page{Name: "Person", ID: "detail"}).Label())
}

func TestPage_Options(t *testing.T) {
	require.Empty(t, (&viewmodel.Page{Name: "Home"}).Options())
	require.Len(t, (&viewmodel.Page{Name: "Person", ID: "detail"}).Options(), 1)
}

func TestFind(t *testing.T) {
	pages := viewmodel.Pages([]locator.Entry{{Name: "Home", Path: "/h"}, {Name: "Person", ID: "x", Path: "/p"}})

	p, ok := viewmodel.Find(pages, "Person/x")
	require.True(t, ok)
	require.Same(t, pages[1], p)

	_, ok = viewmodel.Find(pages, "Person")
	require.False(t, ok)
}

func TestPage_NavigatorReference(t *testing.T) {
	p := &viewmodel.Page{Name: "Home"}
	require.Nil(t, p.Navigator())
	p.SetNavigator(nil)
	require.Nil(t, p.Navigator())
}
