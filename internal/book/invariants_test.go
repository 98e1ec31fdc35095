package book

import "testing"

// assertInvariants walks both ladders and the order index, failing t
// if any structural invariant of a live book is violated: no empty
// levels, positive remaining quantities, volume caches matching their
// queues, every live order resolvable through the index, strictly
// ordered levels on both sides, no crossed book at rest, and a
// contiguous trade sequence.
func assertInvariants(t *testing.T, b *Book) {
	t.Helper()

	indexedCount := 0
	check := func(l *ladder, sideName string) {
		var prevPrice float64
		first := true
		l.levels.Scan(func(lvl *priceLevel) bool {
			if lvl.isEmpty() {
				t.Fatalf("%s: empty level present at price %v", sideName, lvl.price)
			}

			var sum int64
			n := 0
			for node := lvl.head; node != nil; node = node.next {
				sum += node.order.Quantity
				if node.order.Quantity <= 0 {
					t.Fatalf("%s: non-positive remaining qty %d for order %d", sideName, node.order.Quantity, node.order.ID)
				}
				got, ok := b.engine.index.get(node.order.ID)
				if !ok || got != node {
					t.Fatalf("%s: order %d not resolvable via index to its queue node", sideName, node.order.ID)
				}
				n++
			}
			if sum != lvl.volume {
				t.Fatalf("%s: level %v volume cache %d != actual sum %d", sideName, lvl.price, lvl.volume, sum)
			}
			indexedCount += n

			if !first {
				if sideName == "bid" && lvl.price >= prevPrice {
					t.Fatalf("bid levels not strictly descending: %v after %v", lvl.price, prevPrice)
				}
				if sideName == "ask" && lvl.price <= prevPrice {
					t.Fatalf("ask levels not strictly ascending: %v after %v", lvl.price, prevPrice)
				}
			}
			prevPrice, first = lvl.price, false
			return true
		})
	}

	check(b.bids, "bid")
	check(b.asks, "ask")

	if indexedCount != b.engine.index.len() {
		t.Fatalf("order count mismatch: queues hold %d, index holds %d", indexedCount, b.engine.index.len())
	}
	if indexedCount != b.GetOrderCount() {
		t.Fatalf("GetOrderCount() %d != live order count %d", b.GetOrderCount(), indexedCount)
	}

	bestBid, hasBid := b.GetBestBid()
	bestAsk, hasAsk := b.GetBestAsk()
	if hasBid && hasAsk && bestBid >= bestAsk {
		t.Fatalf("crossed book at rest: best bid %v >= best ask %v", bestBid, bestAsk)
	}

	var lastSeq uint64
	for i, tr := range b.trades {
		if i == 0 {
			if tr.Sequence != 1 {
				t.Fatalf("trade log does not start at sequence 1: got %d", tr.Sequence)
			}
		} else if tr.Sequence != lastSeq+1 {
			t.Fatalf("trade sequence not contiguous: %d followed by %d", lastSeq, tr.Sequence)
		}
		lastSeq = tr.Sequence
	}
}
