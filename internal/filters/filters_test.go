package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x6d61/burrow/internal/httpresponse"
)

func resp(status int, length int64) *httpresponse.Response {
	return httpresponse.New("http://h/x", "http://h/x", "GET", status, "", nil, length)
}

func TestWildcardStaticSize(t *testing.T) {
	f := Wildcard{Size: 8}
	assert.True(t, f.ShouldFilter(resp(200, 8)), "expected exact-size match to be filtered")
	assert.False(t, f.ShouldFilter(resp(200, 9)), "did not expect non-matching size to be filtered")
}

func TestWildcardDynamicOffset(t *testing.T) {
	// url path "/x" is length 2; dynamic offset 6 => filtered at length 8.
	f := Wildcard{Dynamic: 6}
	assert.True(t, f.ShouldFilter(resp(200, 8)), "expected dynamic offset match to be filtered")
	assert.False(t, f.ShouldFilter(resp(200, 9)), "did not expect mismatched length to be filtered")
}

func TestCollectionShortCircuitsInOrder(t *testing.T) {
	c := New()
	c.Add(StatusCode{Code: 404})
	c.Add(Size{Bytes: 100})

	assert.True(t, c.ShouldFilter(resp(404, 1)), "expected status filter to match")
	assert.True(t, c.ShouldFilter(resp(200, 100)), "expected size filter to match")
	assert.False(t, c.ShouldFilter(resp(200, 1)), "did not expect a match")
}

func TestCollectionRejectsDuplicates(t *testing.T) {
	c := New()
	require.True(t, c.Add(StatusCode{Code: 404}), "expected first add to succeed")
	assert.False(t, c.Add(StatusCode{Code: 404}), "expected duplicate add to be rejected")
	assert.Equal(t, 1, c.Len())
}

func TestCollectionRemoveByIndex(t *testing.T) {
	c := New()
	c.Add(StatusCode{Code: 404})
	c.Add(Size{Bytes: 1})
	c.Add(LineCount{Lines: 2})

	c.Remove([]int{1})

	list := c.List()
	require.Len(t, list, 2)
	assert.True(t, list[0].Equal(StatusCode{Code: 404}))
	assert.True(t, list[1].Equal(LineCount{Lines: 2}))
}
