package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateSecondPageOfTwelve(t *testing.T) {
	page := Paginate(seq(12), 2, 5)

	assert.Equal(t, []int{5, 6, 7, 8, 9}, page.Items)
	assert.Equal(t, 5, page.StartIndex)
	assert.Equal(t, 10, page.EndIndex)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 6, page.ShownFrom())
	assert.Equal(t, 10, page.ShownTo())
}

func TestPaginateVisibleLength(t *testing.T) {
	for n := 0; n <= 23; n++ {
		total := TotalPages(n, 5)
		assert.Equal(t, (n+4)/5, total, "n=%d", n)
		for p := 0; p <= total+1; p++ {
			page := Paginate(seq(n), p, 5)
			want := 0
			if p >= 1 && p <= total {
				want = min(5, n-(p-1)*5)
			}
			assert.Len(t, page.Items, want, "n=%d p=%d", n, p)
		}
	}
}

func TestPaginateLastPartialPage(t *testing.T) {
	page := Paginate(seq(12), 3, 5)
	assert.Equal(t, []int{10, 11}, page.Items)
	assert.Equal(t, 12, page.ShownTo())
	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrevious())
}

func TestShowControls(t *testing.T) {
	assert.False(t, Paginate(seq(5), 1, 5).ShowControls())
	assert.True(t, Paginate(seq(6), 1, 5).ShowControls())
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"empty", 1, 0, []int{}},
		{"few pages", 2, 3, []int{1, 2, 3}},
		{"exactly five", 5, 5, []int{1, 2, 3, 4, 5}},
		{"near start", 3, 10, []int{1, 2, 3, 4, 5}},
		{"near end", 8, 10, []int{6, 7, 8, 9, 10}},
		{"middle", 6, 10, []int{4, 5, 6, 7, 8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PageWindow(tc.current, tc.total))
		})
	}
}

func TestPageWindowContiguous(t *testing.T) {
	for total := 0; total <= 12; total++ {
		for current := 1; current <= max(1, total); current++ {
			window := PageWindow(current, total)
			require.Len(t, window, min(5, total))
			for i := 1; i < len(window); i++ {
				assert.Equal(t, window[i-1]+1, window[i])
			}
		}
	}
}

func TestControllerNavigation(t *testing.T) {
	c := Restore(1, 5, 12)

	assert.False(t, c.Previous())
	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.False(t, c.Next())
	assert.Equal(t, 3, c.Current())

	c.GoTo(9)
	assert.Equal(t, 9, c.Current())
}

func TestControllerClampsWhenCollectionShrinks(t *testing.T) {
	c := Restore(3, 5, 12)
	c.SetTotal(6)
	assert.Equal(t, 2, c.Current())

	c.SetTotal(0)
	assert.Equal(t, 1, c.Current())
}
