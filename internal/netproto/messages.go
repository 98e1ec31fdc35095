// Package netproto is the TCP binary wire protocol exposing a book.Book
// to external callers. It is deliberately the thinnest possible
// transport: big-endian fixed headers plus a couple of variable-length
// trailers.
package netproto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"ironbook/internal/book"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short for declared symbol length")
)

type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	ModifyOrder
	LogBook
)

type ReportMessageType uint8

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

// Message framing constants. All multi-byte integers are big-endian.
const (
	BaseMessageHeaderLen = 2 // MessageType

	// Side(1) + OrderType(1) + OrderID(8) + Price(8) + Quantity(8) + SymbolLen(1)
	NewOrderMessageHeaderLen = 1 + 1 + 8 + 8 + 8 + 1
	// OrderID(8) + SymbolLen(1)
	CancelOrderMessageHeaderLen = 8 + 1
	// OrderID(8) + NewQuantity(8) + SymbolLen(1)
	ModifyOrderMessageHeaderLen = 8 + 8 + 1
)

type Message interface {
	GetType() MessageType
}

type BaseMessage struct {
	TypeOf MessageType
}

func (m BaseMessage) GetType() MessageType { return m.TypeOf }

// ParseMessage decodes a single frame off the wire. msg must contain
// exactly one message (the caller is responsible for framing/buffering).
func ParseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return nil, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[2:]

	switch typeOf {
	case NewOrder:
		return parseNewOrder(body)
	case CancelOrder:
		return parseCancelOrder(body)
	case ModifyOrder:
		return parseModifyOrder(body)
	case LogBook:
		return BaseMessage{TypeOf: LogBook}, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

type NewOrderMessage struct {
	BaseMessage
	Symbol    string
	Side      book.Side
	OrderType book.OrderType
	OrderID   int64
	Price     float64
	Quantity  int64
}

// Order converts the wire message into a core book.Order. Price is
// meaningless (and ignored) for market orders.
func (m NewOrderMessage) Order() book.Order {
	return book.Order{
		ID:       m.OrderID,
		Side:     m.Side,
		Type:     m.OrderType,
		Price:    m.Price,
		Quantity: m.Quantity,
	}
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	if len(msg) < NewOrderMessageHeaderLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	m.Side = book.Side(msg[0])
	m.OrderType = book.OrderType(msg[1])
	m.OrderID = int64(binary.BigEndian.Uint64(msg[2:10]))
	m.Price = math.Float64frombits(binary.BigEndian.Uint64(msg[10:18]))
	m.Quantity = int64(binary.BigEndian.Uint64(msg[18:26]))
	symbolLen := int(msg[26])

	if len(msg) < NewOrderMessageHeaderLen+symbolLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m.Symbol = string(msg[NewOrderMessageHeaderLen : NewOrderMessageHeaderLen+symbolLen])
	return m, nil
}

type CancelOrderMessage struct {
	BaseMessage
	Symbol  string
	OrderID int64
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageHeaderLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	m := CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}}
	m.OrderID = int64(binary.BigEndian.Uint64(msg[0:8]))
	symbolLen := int(msg[8])

	if len(msg) < CancelOrderMessageHeaderLen+symbolLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	m.Symbol = string(msg[CancelOrderMessageHeaderLen : CancelOrderMessageHeaderLen+symbolLen])
	return m, nil
}

type ModifyOrderMessage struct {
	BaseMessage
	Symbol      string
	OrderID     int64
	NewQuantity int64
}

func parseModifyOrder(msg []byte) (ModifyOrderMessage, error) {
	if len(msg) < ModifyOrderMessageHeaderLen {
		return ModifyOrderMessage{}, ErrMessageTooShort
	}
	m := ModifyOrderMessage{BaseMessage: BaseMessage{TypeOf: ModifyOrder}}
	m.OrderID = int64(binary.BigEndian.Uint64(msg[0:8]))
	m.NewQuantity = int64(binary.BigEndian.Uint64(msg[8:16]))
	symbolLen := int(msg[16])

	if len(msg) < ModifyOrderMessageHeaderLen+symbolLen {
		return ModifyOrderMessage{}, ErrMessageTooShort
	}
	m.Symbol = string(msg[ModifyOrderMessageHeaderLen : ModifyOrderMessageHeaderLen+symbolLen])
	return m, nil
}

// Report is an execution or error report sent back to a client.
type Report struct {
	MessageType    ReportMessageType
	Side           book.Side
	Timestamp      uint64
	Quantity       int64
	Price          float64
	CounterpartyID int64
	Err            string
}

const reportFixedHeaderLen = 1 + 1 + 8 + 8 + 8 + 8 + 4 // type+side+ts+qty+price+counterparty+errlen

func (r *Report) Serialize() []byte {
	buf := make([]byte, reportFixedHeaderLen+len(r.Err))
	buf[0] = byte(r.MessageType)
	buf[1] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[2:10], r.Timestamp)
	binary.BigEndian.PutUint64(buf[10:18], uint64(r.Quantity))
	binary.BigEndian.PutUint64(buf[18:26], math.Float64bits(r.Price))
	binary.BigEndian.PutUint64(buf[26:34], uint64(r.CounterpartyID))
	binary.BigEndian.PutUint32(buf[34:38], uint32(len(r.Err)))
	copy(buf[reportFixedHeaderLen:], r.Err)
	return buf
}

// tradeReports builds the pair of execution reports for a trade, one
// addressed to each side of it.
func tradeReports(trade book.Trade, ts time.Time) (buyerReport, sellerReport []byte) {
	base := Report{
		MessageType: ExecutionReport,
		Timestamp:   uint64(ts.Unix()),
		Quantity:    trade.Quantity,
		Price:       trade.Price,
	}
	buyer := base
	buyer.Side = book.Buy
	buyer.CounterpartyID = trade.SellOrderID
	seller := base
	seller.Side = book.Sell
	seller.CounterpartyID = trade.BuyOrderID
	return buyer.Serialize(), seller.Serialize()
}

func errorReport(err error) []byte {
	r := Report{MessageType: ErrorReport, Err: fmt.Sprintf("%v", err)}
	return r.Serialize()
}
