package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLevel_AppendAndVolume(t *testing.T) {
	lvl := newPriceLevel(100.0, Buy)
	lvl.append(&Order{ID: 1, Quantity: 10})
	lvl.append(&Order{ID: 2, Quantity: 20})

	assert.Equal(t, int64(30), lvl.volume)
	assert.Equal(t, 2, lvl.count)
	assert.Equal(t, int64(1), lvl.front().order.ID)
}

func TestPriceLevel_UnlinkInterior(t *testing.T) {
	lvl := newPriceLevel(100.0, Buy)
	n1 := lvl.append(&Order{ID: 1, Quantity: 10})
	n2 := lvl.append(&Order{ID: 2, Quantity: 20})
	n3 := lvl.append(&Order{ID: 3, Quantity: 30})

	lvl.unlink(n2)

	assert.Equal(t, int64(40), lvl.volume)
	assert.Equal(t, 2, lvl.count)
	assert.Same(t, n1, lvl.head)
	assert.Same(t, n3, lvl.tail)
	assert.Same(t, n3, n1.next)
	assert.Same(t, n1, n3.prev)
}

func TestPriceLevel_UnlinkHeadAndTail(t *testing.T) {
	lvl := newPriceLevel(100.0, Buy)
	n1 := lvl.append(&Order{ID: 1, Quantity: 10})
	lvl.unlink(n1)

	assert.True(t, lvl.isEmpty())
	assert.Nil(t, lvl.head)
	assert.Nil(t, lvl.tail)
	assert.Equal(t, int64(0), lvl.volume)
}

func TestPriceLevel_FillHeadPartial(t *testing.T) {
	lvl := newPriceLevel(100.0, Buy)
	lvl.append(&Order{ID: 1, Quantity: 10})

	node := lvl.fillHead(4)

	require.NotNil(t, node)
	assert.Equal(t, int64(6), node.order.Quantity)
	assert.Equal(t, int64(6), lvl.volume)
	assert.False(t, lvl.isEmpty())
	assert.Same(t, node, lvl.head)
}

func TestPriceLevel_FillHeadFull(t *testing.T) {
	lvl := newPriceLevel(100.0, Buy)
	lvl.append(&Order{ID: 1, Quantity: 10})
	lvl.append(&Order{ID: 2, Quantity: 5})

	filled := lvl.fillHead(10)

	assert.Equal(t, int64(0), filled.order.Quantity)
	assert.Equal(t, int64(5), lvl.volume)
	assert.Equal(t, 1, lvl.count)
	assert.Equal(t, int64(2), lvl.head.order.ID)
}
