package streamd

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"songd/internal/events"
	"songd/internal/library"
	"songd/pkg/types"
)

// handshakeTimeout bounds the wait for a client's 6-byte id after connect.
const handshakeTimeout = 5 * time.Second

// channelKind distinguishes the two listeners a client must dial.
type channelKind int

const (
	channelCommunication channelKind = iota
	channelStreaming
)

func (k channelKind) String() string {
	if k == channelCommunication {
		return "communication"
	}
	return "streaming"
}

// Server accepts clients on the communication and streaming ports, pairs the
// two connections of each client by full id, and runs a clientHandler per
// paired client.
type Server struct {
	commAddr   string
	streamAddr string
	store      *library.Store
	bus        *events.Bus
	log        zerolog.Logger

	mu       sync.Mutex
	pending  [2]map[string]net.Conn // parked half-connections by kind
	handlers map[string]*clientHandler

	listener    *events.Listener
	started     time.Time
	ready       atomic.Bool
	boundComm   string
	boundStream string
	wg          sync.WaitGroup
}

// New builds a server. It registers a listener on bus for client.removed so
// finished handlers drop out of the session table.
func New(commAddr, streamAddr string, store *library.Store, bus *events.Bus, log zerolog.Logger) *Server {
	s := &Server{
		commAddr:   commAddr,
		streamAddr: streamAddr,
		store:      store,
		bus:        bus,
		log:        log.With().Str("component", "streamd").Logger(),
		handlers:   make(map[string]*clientHandler),
	}
	s.pending[channelCommunication] = make(map[string]net.Conn)
	s.pending[channelStreaming] = make(map[string]net.Conn)
	s.listener = bus.NewListener()
	events.Listen(s.listener, EventClientRemoved, s.removeHandler)
	return s
}

// Run binds both listeners and serves until ctx is canceled. It returns nil
// on a clean shutdown and waits for running client handlers to finish.
func (s *Server) Run(ctx context.Context) error {
	commLis, err := net.Listen("tcp", s.commAddr)
	if err != nil {
		return fmt.Errorf("listen communication: %w", err)
	}
	streamLis, err := net.Listen("tcp", s.streamAddr)
	if err != nil {
		commLis.Close()
		return fmt.Errorf("listen streaming: %w", err)
	}
	s.log.Info().Str("communication", commLis.Addr().String()).
		Str("streaming", streamLis.Addr().String()).Msg("listening")
	s.mu.Lock()
	s.boundComm = commLis.Addr().String()
	s.boundStream = streamLis.Addr().String()
	s.started = time.Now()
	s.mu.Unlock()
	s.ready.Store(true)
	defer s.ready.Store(false)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		commLis.Close()
		streamLis.Close()
		return nil
	})
	g.Go(func() error { return s.acceptLoop(ctx, commLis, channelCommunication) })
	g.Go(func() error { return s.acceptLoop(ctx, streamLis, channelStreaming) })
	err = g.Wait()
	s.wg.Wait()
	s.closePending()
	s.listener.Close()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Ready reports whether both listeners are accepting.
func (s *Server) Ready() bool { return s.ready.Load() }

// BoundAddrs returns the actual listen addresses once Run has bound them,
// which matters when the configured port is 0.
func (s *Server) BoundAddrs() (comm, stream string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundComm, s.boundStream
}

// SearchSongs serves the HTTP admin search.
func (s *Server) SearchSongs(ctx context.Context, term string) ([]types.Song, error) {
	return s.store.Search(ctx, term)
}

// Status snapshots the server for the HTTP admin plane.
func (s *Server) Status(ctx context.Context) types.StatusResponse {
	s.mu.Lock()
	connected := len(s.handlers)
	started := s.started
	commAddr, streamAddr := s.boundComm, s.boundStream
	s.mu.Unlock()
	// Before Run binds the listeners, fall back to the configured addresses.
	if commAddr == "" {
		commAddr = s.commAddr
	}
	if streamAddr == "" {
		streamAddr = s.streamAddr
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("library count failed")
	}
	now := time.Now()
	var uptime int64
	if !started.IsZero() {
		uptime = int64(now.Sub(started).Seconds())
	}
	return types.StatusResponse{
		ConnectedClients:  connected,
		LibrarySongs:      count,
		CommunicationPort: addrPort(commAddr),
		StreamingPort:     addrPort(streamAddr),
		UptimeSeconds:     uptime,
		ServerTimeUnix:    now.Unix(),
	}
}

// acceptLoop accepts connections on one listener, performs the id handshake,
// and parks or pairs each connection.
func (s *Server) acceptLoop(ctx context.Context, lis net.Listener, kind channelKind) error {
	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept %s: %w", kind, err)
		}
		fullID, err := s.handshake(conn)
		if err != nil {
			s.log.Warn().Err(err).Str("channel", kind.String()).Msg("handshake failed")
			conn.Close()
			continue
		}
		s.addHalf(ctx, kind, fullID, conn)
	}
}

// handshake reads the 6-byte client id and returns the full client id,
// "id@ip".
func (s *Server) handshake(conn net.Conn) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return "", err
	}
	buf := make([]byte, clientIDLen)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return "", fmt.Errorf("read client id: %w", err)
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return "", err
	}
	return clientFullID(string(buf), conn.RemoteAddr()), nil
}

// addHalf parks a half-connection, or starts a handler when its counterpart
// is already waiting. A duplicate handshake replaces the parked half.
func (s *Server) addHalf(ctx context.Context, kind channelKind, fullID string, conn net.Conn) {
	other := channelStreaming
	if kind == channelStreaming {
		other = channelCommunication
	}

	s.mu.Lock()
	if prev, ok := s.pending[kind][fullID]; ok {
		prev.Close()
	}
	counterpart, paired := s.pending[other][fullID]
	if !paired {
		s.pending[kind][fullID] = conn
		s.mu.Unlock()
		return
	}
	delete(s.pending[other], fullID)
	delete(s.pending[kind], fullID)

	comm, stream := conn, counterpart
	if kind == channelStreaming {
		comm, stream = counterpart, conn
	}
	h := newClientHandler(fullID, comm, stream, s.store, s.bus, s.log)
	s.handlers[fullID] = h
	s.mu.Unlock()

	if err := s.bus.Emit(EventClientConnected, ClientConnected{ClientID: fullID}); err != nil {
		s.log.Error().Err(err).Msg("connected event failed")
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		h.run(ctx)
	}()
}

// removeHandler is the bus callback for client.removed.
func (s *Server) removeHandler(h *clientHandler) error {
	s.mu.Lock()
	if cur, ok := s.handlers[h.fullID]; ok && cur == h {
		delete(s.handlers, h.fullID)
	}
	s.mu.Unlock()
	return nil
}

// closePending drops half-connections that never found their counterpart.
func (s *Server) closePending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.pending {
		for id, conn := range m {
			conn.Close()
			delete(m, id)
		}
	}
}

// clientFullID joins the handshake id with the client's IP: "id@ip".
func clientFullID(clientID string, addr net.Addr) string {
	host := addr.String()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	// Strip IPv6 zone suffixes so the id stays stable.
	if i := strings.IndexByte(host, '%'); i >= 0 {
		host = host[:i]
	}
	return clientID + "@" + host
}

// addrPort extracts the numeric port of a host:port string, 0 when absent.
func addrPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return port
}
