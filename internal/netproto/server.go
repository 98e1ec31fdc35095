package netproto

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"ironbook/internal/book"
	"ironbook/internal/workerpool"
)

const (
	maxRecvSize      = 4 * 1024
	defaultNWorkers  = 10
	defaultConnTimeout = time.Second
)

var (
	ErrImproperConversion = errors.New("improper task type conversion")
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrSessionGone        = errors.New("client session no longer connected")
)

// clientSession is one connected TCP client, identified by a uuid the
// server assigns on accept rather than an address-string key (which
// breaks across a reconnect from the same local port).
type clientSession struct {
	conn net.Conn
}

type clientMessage struct {
	sessionID uuid.UUID
	message   Message
}

// Server is a TCP front end multiplexing NewOrder/CancelOrder/
// ModifyOrder/LogBook requests onto one book.Book per symbol. Each
// symbol's book is only ever touched from the single session-handler
// goroutine, so no book.Book instance is ever mutated concurrently —
// mutual exclusion is pushed out here, one serialized queue per
// process, instead of inside the book itself.
type Server struct {
	address string
	port    int
	books   map[string]*book.Book

	pool   workerpool.Pool
	cancel context.CancelFunc

	sessionsMu sync.Mutex
	sessions   map[uuid.UUID]*clientSession

	inbox chan clientMessage
}

// New creates a server that will route requests for the given symbols
// to their own book.Book. Unknown symbols are rejected per-request.
func New(address string, port int, symbols ...string) *Server {
	books := make(map[string]*book.Book, len(symbols))
	for _, sym := range symbols {
		books[sym] = book.New(sym)
	}
	return &Server{
		address:  address,
		port:     port,
		books:    books,
		pool:     workerpool.New(defaultNWorkers),
		sessions: make(map[uuid.UUID]*clientSession),
		inbox:    make(chan clientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run blocks, accepting connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()
	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			id := s.addSession(conn)
			log.Info().Str("session", id.String()).Msg("new client connected")
			s.pool.AddTask(connTask{id: id, conn: conn})
		}
	}
}

type connTask struct {
	id   uuid.UUID
	conn net.Conn
}

func (s *Server) addSession(conn net.Conn) uuid.UUID {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	id := uuid.New()
	s.sessions[id] = &clientSession{conn: conn}
	return id
}

func (s *Server) removeSession(id uuid.UUID) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, id)
}

// sessionHandler serializes all book mutation behind a single
// goroutine reading off the shared inbox.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case msg := <-s.inbox:
			if err := s.handleMessage(msg); err != nil {
				log.Error().Err(err).Str("session", msg.sessionID.String()).Msg("error handling message")
				s.reportError(msg.sessionID, err)
			}
		}
	}
}

func (s *Server) handleMessage(msg clientMessage) error {
	switch m := msg.message.(type) {
	case NewOrderMessage:
		b, ok := s.books[m.Symbol]
		if !ok {
			return ErrUnknownSymbol
		}
		ord := m.Order()
		before := b.GetTradeCount()
		var ok2 bool
		if ord.Type == book.MarketOrder {
			ok2 = b.AddMarketOrder(ord.ID, ord.Side, ord.Quantity)
		} else {
			ok2 = b.AddLimitOrder(ord.ID, ord.Side, ord.Price, ord.Quantity)
		}
		if !ok2 {
			return fmt.Errorf("order %d rejected", ord.ID)
		}
		s.reportNewTrades(msg.sessionID, ord.Side, b, before)
	case CancelOrderMessage:
		b, ok := s.books[m.Symbol]
		if !ok {
			return ErrUnknownSymbol
		}
		if !b.CancelOrder(m.OrderID) {
			return fmt.Errorf("cancel of order %d rejected", m.OrderID)
		}
	case ModifyOrderMessage:
		b, ok := s.books[m.Symbol]
		if !ok {
			return ErrUnknownSymbol
		}
		if !b.ModifyOrder(m.OrderID, m.NewQuantity) {
			return fmt.Errorf("modify of order %d rejected", m.OrderID)
		}
	case BaseMessage:
		if m.GetType() == LogBook {
			for sym, b := range s.books {
				log.Info().Str("symbol", sym).Str("book", b.String()).Msg("book snapshot")
			}
		}
	default:
		return ErrInvalidMessageType
	}
	return nil
}

// reportNewTrades delivers an execution report for every trade recorded
// since before to the session that submitted the order, from that
// order's own side. Reporting the counterparty side as well would
// require tracking which session owns each resting order, which the
// engine does not do.
func (s *Server) reportNewTrades(sessionID uuid.UUID, side book.Side, b *book.Book, before int) {
	trades := b.GetTrades()
	if len(trades) <= before {
		return
	}
	now := time.Now()
	for _, trade := range trades[before:] {
		buyerReport, sellerReport := tradeReports(trade, now)
		if side == book.Buy {
			s.sendTo(sessionID, buyerReport)
		} else {
			s.sendTo(sessionID, sellerReport)
		}
	}
}

func (s *Server) sendTo(sessionID uuid.UUID, payload []byte) {
	s.sessionsMu.Lock()
	session, ok := s.sessions[sessionID]
	s.sessionsMu.Unlock()
	if !ok {
		return
	}
	if _, err := session.conn.Write(payload); err != nil {
		log.Error().Err(err).Str("session", sessionID.String()).Msg("failed to deliver report")
	}
}

func (s *Server) reportError(sessionID uuid.UUID, cause error) {
	s.sendTo(sessionID, errorReport(cause))
}

func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	ct, ok := task.(connTask)
	if !ok {
		return ErrImproperConversion
	}

	closeConn := func() {
		if err := ct.conn.Close(); err != nil {
			log.Error().Err(err).Str("session", ct.id.String()).Msg("error closing connection")
		}
	}

	if err := ct.conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Str("session", ct.id.String()).Msg("failed to set read deadline")
		closeConn()
		return nil
	}

	buf := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		closeConn()
		return nil
	default:
		n, err := ct.conn.Read(buf)
		if err != nil {
			log.Error().Err(err).Str("session", ct.id.String()).Msg("error reading from connection")
			s.removeSession(ct.id)
			closeConn()
			return nil
		}

		msg, err := ParseMessage(buf[:n])
		if err != nil {
			log.Error().Err(err).Str("session", ct.id.String()).Msg("error parsing message")
			s.removeSession(ct.id)
			closeConn()
			return nil
		}

		// The connection stays open: the report for this message is
		// written to it later by sessionHandler, and the task is
		// re-queued to read the session's next message.

		s.inbox <- clientMessage{sessionID: ct.id, message: msg}
		s.pool.AddTask(ct)
	}
	return nil
}
