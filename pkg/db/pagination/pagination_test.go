package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 50}, Page{}.Normalize(50, 250))
	assert.Equal(t, Page{Page: 3, Limit: 250}, Page{Page: 3, Limit: 1000}.Normalize(50, 250))
}

func TestOffsetAndInfo(t *testing.T) {
	p := Page{Page: 3, Limit: 50}
	assert.Equal(t, 100, p.Offset())

	info := p.Info(101)
	assert.Equal(t, PageInfo{Page: 3, Limit: 50, Total: 101, Pages: 3}, info)
	assert.Equal(t, 0, TotalPages(0, 50))
	assert.Equal(t, 1, TotalPages(50, 50))
}
