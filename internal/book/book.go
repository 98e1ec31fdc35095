package book

import (
	"fmt"
	"math"
)

// Book owns both ladders, the order index, the trade log and the
// arrival/trade sequence counters for one symbol. It is the public
// facade: every mutating or querying operation a caller makes goes
// through a Book method. A Book is not internally synchronised —
// concurrent callers must externalise their own mutual exclusion.
type Book struct {
	symbol string

	bids   *ladder
	asks   *ladder
	engine *matchingEngine

	trades      []Trade
	nextSeq     uint64
	nextArrival uint64
}

// New creates an empty book for symbol. The symbol is opaque; the book
// performs no semantic interpretation of it.
func New(symbol string) *Book {
	bids := newLadder(Buy)
	asks := newLadder(Sell)
	return &Book{
		symbol: symbol,
		bids:   bids,
		asks:   asks,
		engine: newMatchingEngine(bids, asks),
	}
}

func (b *Book) Symbol() string { return b.symbol }

// AddLimitOrder accepts a priced order, matches it against resting
// liquidity, and rests any residual quantity at Price. Returns false
// without mutating the book if id is already live, qty <= 0, or price
// is non-positive/non-finite.
func (b *Book) AddLimitOrder(id int64, side Side, price float64, qty int64) bool {
	if qty <= 0 || !validPrice(price) || b.engine.index.has(id) {
		return false
	}

	order := &Order{
		ID:         id,
		Side:       side,
		Type:       LimitOrder,
		Price:      price,
		Quantity:   qty,
		ArrivalSeq: b.nextArrivalSeq(),
	}

	b.engine.run(order, b.emit)

	if order.Quantity > 0 {
		lvl := b.restingLadder(side).getOrCreate(price)
		node := lvl.append(order)
		b.engine.index.put(id, node)
	}
	return true
}

// AddMarketOrder accepts an unpriced order, matches it against resting
// liquidity until filled or the opposite side is exhausted, and drops
// any residual silently. Returns false if qty <= 0.
func (b *Book) AddMarketOrder(id int64, side Side, qty int64) bool {
	if qty <= 0 {
		return false
	}

	order := &Order{
		ID:         id,
		Side:       side,
		Type:       MarketOrder,
		Quantity:   qty,
		ArrivalSeq: b.nextArrivalSeq(),
	}

	b.engine.run(order, b.emit)
	// Residual quantity, if any, is dropped: market orders never rest.
	return true
}

// CancelOrder removes a live order from the book. Returns false if id
// is unknown or already gone; cancelling the same id twice returns
// true at most once.
func (b *Book) CancelOrder(id int64) bool {
	node, ok := b.engine.index.get(id)
	if !ok {
		return false
	}
	lvl := node.level
	lvl.unlink(node)
	b.restingLadder(lvl.side).deleteIfEmpty(lvl)
	b.engine.index.delete(id)
	return true
}

// ModifyOrder changes the remaining quantity of a live order. A
// decrease is applied in place and keeps the order's queue position
// (time priority). An increase re-queues the order at the tail of its
// price level under a fresh arrival sequence, losing time priority.
// Returns false if id is unknown or newQty <= 0.
func (b *Book) ModifyOrder(id int64, newQty int64) bool {
	if newQty <= 0 {
		return false
	}
	node, ok := b.engine.index.get(id)
	if !ok {
		return false
	}

	lvl := node.level
	current := node.order.Quantity
	if newQty <= current {
		delta := current - newQty
		node.order.Quantity = newQty
		lvl.volume -= delta
		return true
	}

	// Quantity increase: equivalent to cancel + re-add at the same
	// price with a new arrival sequence.
	side := node.order.Side
	price := lvl.price
	lvl.unlink(node)

	newOrder := &Order{
		ID:         id,
		Side:       side,
		Type:       LimitOrder,
		Price:      price,
		Quantity:   newQty,
		ArrivalSeq: b.nextArrivalSeq(),
	}
	newNode := lvl.append(newOrder)
	b.engine.index.put(id, newNode)
	return true
}

// GetBestBid returns the highest live bid price, or false if bids are empty.
func (b *Book) GetBestBid() (float64, bool) { return bestPrice(b.bids) }

// GetBestAsk returns the lowest live ask price, or false if asks are empty.
func (b *Book) GetBestAsk() (float64, bool) { return bestPrice(b.asks) }

// GetMidPrice returns (best bid + best ask) / 2, or false if either side is empty.
func (b *Book) GetMidPrice() (float64, bool) {
	bid, ok := b.GetBestBid()
	if !ok {
		return 0, false
	}
	ask, ok := b.GetBestAsk()
	if !ok {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// GetSpread returns best ask - best bid, or false if either side is empty.
func (b *Book) GetSpread() (float64, bool) {
	bid, ok := b.GetBestBid()
	if !ok {
		return 0, false
	}
	ask, ok := b.GetBestAsk()
	if !ok {
		return 0, false
	}
	return ask - bid, true
}

// GetBids returns up to n (price, aggregate volume) pairs, best first.
func (b *Book) GetBids(n int) []PriceVolume { return b.bids.depth(n) }

// GetAsks returns up to n (price, aggregate volume) pairs, best first.
func (b *Book) GetAsks(n int) []PriceVolume { return b.asks.depth(n) }

// GetBidVolumeAtPrice returns the live volume at price on the bid side, or 0.
func (b *Book) GetBidVolumeAtPrice(price float64) int64 { return b.bids.volumeAt(price) }

// GetAskVolumeAtPrice returns the live volume at price on the ask side, or 0.
func (b *Book) GetAskVolumeAtPrice(price float64) int64 { return b.asks.volumeAt(price) }

// GetTotalBidVolume sums every live bid level's volume.
func (b *Book) GetTotalBidVolume() int64 { return b.bids.totalVolume() }

// GetTotalAskVolume sums every live ask level's volume.
func (b *Book) GetTotalAskVolume() int64 { return b.asks.totalVolume() }

// GetOrderCount returns the number of live orders tracked across both sides.
func (b *Book) GetOrderCount() int { return b.engine.index.len() }

// GetTradeCount returns the number of trades recorded so far.
func (b *Book) GetTradeCount() int { return len(b.trades) }

// GetTrades returns a copy of the full trade log; mutating the result
// never affects the book.
func (b *Book) GetTrades() []Trade {
	out := make([]Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

func (b *Book) String() string {
	bid, hasBid := b.GetBestBid()
	ask, hasAsk := b.GetBestAsk()
	bidStr, askStr := "none", "none"
	if hasBid {
		bidStr = fmt.Sprintf("%.4f", bid)
	}
	if hasAsk {
		askStr = fmt.Sprintf("%.4f", ask)
	}
	return fmt.Sprintf("Book{symbol=%s bid=%s ask=%s orders=%d trades=%d}",
		b.symbol, bidStr, askStr, b.GetOrderCount(), b.GetTradeCount())
}

func (b *Book) emit(buyOrderID, sellOrderID int64, price float64, qty int64) {
	b.nextSeq++
	b.trades = append(b.trades, Trade{
		BuyOrderID:  buyOrderID,
		SellOrderID: sellOrderID,
		Price:       price,
		Quantity:    qty,
		Sequence:    b.nextSeq,
	})
}

func (b *Book) nextArrivalSeq() uint64 {
	b.nextArrival++
	return b.nextArrival
}

func (b *Book) restingLadder(side Side) *ladder {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

func bestPrice(l *ladder) (float64, bool) {
	lvl, ok := l.best()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

func validPrice(price float64) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price > 0
}
