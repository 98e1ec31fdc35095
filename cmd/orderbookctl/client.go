package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
	"time"

	"ironbook/internal/book"
	"ironbook/internal/netproto"
)

// dial opens a connection to the server named by the --server flag.
func dial(serverAddr string) (net.Conn, error) {
	return net.DialTimeout("tcp", serverAddr, 3*time.Second)
}

func sendNewOrder(conn net.Conn, symbol string, side book.Side, typ book.OrderType, id int64, price float64, qty int64) error {
	symLen := len(symbol)
	buf := make([]byte, netproto.BaseMessageHeaderLen+netproto.NewOrderMessageHeaderLen+symLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(netproto.NewOrder))
	body := buf[2:]
	body[0] = byte(side)
	body[1] = byte(typ)
	binary.BigEndian.PutUint64(body[2:10], uint64(id))
	binary.BigEndian.PutUint64(body[10:18], math.Float64bits(price))
	binary.BigEndian.PutUint64(body[18:26], uint64(qty))
	body[26] = uint8(symLen)
	copy(body[27:], symbol)

	_, err := conn.Write(buf)
	return err
}

func sendCancelOrder(conn net.Conn, symbol string, id int64) error {
	symLen := len(symbol)
	buf := make([]byte, netproto.BaseMessageHeaderLen+netproto.CancelOrderMessageHeaderLen+symLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(netproto.CancelOrder))
	body := buf[2:]
	binary.BigEndian.PutUint64(body[0:8], uint64(id))
	body[8] = uint8(symLen)
	copy(body[9:], symbol)

	_, err := conn.Write(buf)
	return err
}

func sendModifyOrder(conn net.Conn, symbol string, id int64, newQty int64) error {
	symLen := len(symbol)
	buf := make([]byte, netproto.BaseMessageHeaderLen+netproto.ModifyOrderMessageHeaderLen+symLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(netproto.ModifyOrder))
	body := buf[2:]
	binary.BigEndian.PutUint64(body[0:8], uint64(id))
	binary.BigEndian.PutUint64(body[8:16], uint64(newQty))
	body[16] = uint8(symLen)
	copy(body[17:], symbol)

	_, err := conn.Write(buf)
	return err
}

func sendLog(conn net.Conn) error {
	buf := make([]byte, netproto.BaseMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(netproto.LogBook))
	_, err := conn.Write(buf)
	return err
}

// awaitReport blocks for a single report frame and prints it. A real
// trading client would keep a persistent reader goroutine; the CLI
// only needs the one reply per invocation.
func awaitReport(conn net.Conn) {
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		return
	}
	header := make([]byte, 38)
	if _, err := io.ReadFull(conn, header); err != nil {
		return
	}

	msgType := netproto.ReportMessageType(header[0])
	side := book.Side(header[1])
	qty := int64(binary.BigEndian.Uint64(header[10:18]))
	price := math.Float64frombits(binary.BigEndian.Uint64(header[18:26]))
	counterparty := int64(binary.BigEndian.Uint64(header[26:34]))
	errLen := binary.BigEndian.Uint32(header[34:38])

	errBuf := make([]byte, errLen)
	if errLen > 0 {
		if _, err := io.ReadFull(conn, errBuf); err != nil {
			return
		}
	}

	if msgType == netproto.ErrorReport {
		fmt.Printf("error: %s\n", string(errBuf))
		return
	}
	fmt.Printf("execution: side=%s qty=%d price=%.4f counterparty=%d\n", side, qty, price, counterparty)
}
