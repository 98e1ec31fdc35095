package book

import "github.com/tidwall/btree"

// ladder is a sorted map from price to priceLevel for one side of the
// book, ordered so that the tree's natural (least-first) order is
// always best-to-worst: descending by price for bids, ascending for
// asks. P (the number of distinct live prices) is typically small, so
// best-price lookup, level insertion and level deletion are all
// O(log P) via tidwall/btree.
type ladder struct {
	side   Side
	levels *btree.BTreeG[*priceLevel]
}

func newLadder(side Side) *ladder {
	var less func(a, b *priceLevel) bool
	if side == Buy {
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	} else {
		less = func(a, b *priceLevel) bool { return a.price < b.price }
	}
	return &ladder{
		side:   side,
		levels: btree.NewBTreeG(less),
	}
}

// best returns the best (highest bid / lowest ask) level, if any.
func (l *ladder) best() (*priceLevel, bool) {
	return l.levels.Min()
}

// get returns the level at price, if one exists.
func (l *ladder) get(price float64) (*priceLevel, bool) {
	return l.levels.Get(&priceLevel{price: price, side: l.side})
}

// getOrCreate returns the existing level at price or inserts and
// returns a fresh empty one.
func (l *ladder) getOrCreate(price float64) *priceLevel {
	if lvl, ok := l.get(price); ok {
		return lvl
	}
	lvl := newPriceLevel(price, l.side)
	l.levels.Set(lvl)
	return lvl
}

// deleteIfEmpty removes lvl from the tree once its queue has drained.
// Called after every fill/unlink that might have emptied the level.
func (l *ladder) deleteIfEmpty(lvl *priceLevel) {
	if lvl.isEmpty() {
		l.levels.Delete(lvl)
	}
}

// depth walks the ladder best-to-worst, collecting up to n
// (price, aggregate volume) pairs.
func (l *ladder) depth(n int) []PriceVolume {
	if n <= 0 {
		return nil
	}
	out := make([]PriceVolume, 0, n)
	l.levels.Scan(func(lvl *priceLevel) bool {
		out = append(out, PriceVolume{Price: lvl.price, Volume: lvl.volume})
		return len(out) < n
	})
	return out
}

// volumeAt returns the cached volume at price, or 0 if the price has
// no live level.
func (l *ladder) volumeAt(price float64) int64 {
	lvl, ok := l.get(price)
	if !ok {
		return 0
	}
	return lvl.volume
}

// totalVolume sums every live level's volume. P is small (tens to
// hundreds of distinct prices in practice) so a full walk is cheap and
// avoids keeping a second redundant counter in sync with every mutation.
func (l *ladder) totalVolume() int64 {
	var total int64
	l.levels.Scan(func(lvl *priceLevel) bool {
		total += lvl.volume
		return true
	})
	return total
}

func (l *ladder) len() int {
	return l.levels.Len()
}
