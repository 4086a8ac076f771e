package streamd

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"songd/internal/events"
	"songd/internal/library"
)

// Request verbs accepted on the communication channel, "VERB@arg" framed.
const (
	verbSearch        = "SEARCH"
	verbTerminateRecv = "TERMINATE_SONG_DATA_RECV"
)

// clientHandler serves one paired client: search requests on the
// communication connection, audio packets on the streaming connection.
type clientHandler struct {
	fullID string
	comm   net.Conn
	stream net.Conn
	store  *library.Store
	bus    *events.Bus
	log    zerolog.Logger

	// stopSend aborts the in-flight song transfer when raised.
	stopSend atomic.Bool
}

func newClientHandler(fullID string, comm, stream net.Conn, store *library.Store, bus *events.Bus, log zerolog.Logger) *clientHandler {
	return &clientHandler{
		fullID: fullID,
		comm:   comm,
		stream: stream,
		store:  store,
		bus:    bus,
		log:    log.With().Str("client", fullID).Logger(),
	}
}

// run drives both loops until the client disconnects or ctx is canceled,
// then announces the handler's removal on the bus.
func (h *clientHandler) run(ctx context.Context) {
	h.log.Info().Msg("client connected")

	unhook := context.AfterFunc(ctx, func() {
		h.comm.Close()
		h.stream.Close()
	})
	defer unhook()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.communicationLoop(ctx)
		// A dead communication channel ends the stream too.
		h.stream.Close()
	}()
	go func() {
		defer wg.Done()
		h.streamingLoop(ctx)
		h.comm.Close()
	}()
	wg.Wait()

	h.comm.Close()
	h.stream.Close()
	h.log.Info().Msg("client terminated")
	if err := h.bus.Emit(EventClientRemoved, h); err != nil {
		h.log.Error().Err(err).Msg("removal event failed")
	}
}

// communicationLoop reads framed requests and executes them until the
// connection breaks.
func (h *clientHandler) communicationLoop(ctx context.Context) {
	for {
		payload, err := readFrame(h.comm)
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				h.log.Debug().Err(err).Msg("communication channel closed")
			}
			return
		}
		if err := h.execute(ctx, string(payload)); err != nil {
			h.log.Debug().Err(err).Msg("request failed")
			return
		}
	}
}

// execute dispatches one "VERB@arg" request. Unknown verbs are ignored.
func (h *clientHandler) execute(ctx context.Context, request string) error {
	verb, arg, _ := strings.Cut(request, "@")
	switch verb {
	case verbTerminateRecv:
		h.stopSend.Store(true)
		return nil
	case verbSearch:
		return h.search(ctx, arg)
	default:
		h.log.Debug().Str("verb", verb).Msg("unknown request verb")
		return nil
	}
}

// search sends the result count followed by each matching song, JSON-encoded
// and sliced into chunkSize pieces: chunk count, the full chunks, then the
// last chunk prefixed with its length.
func (h *clientHandler) search(ctx context.Context, term string) error {
	songs, err := h.store.Search(ctx, term)
	if err != nil {
		return err
	}
	if err := writeUint32(h.comm, uint32(len(songs))); err != nil {
		return err
	}
	for _, song := range songs {
		encoded, err := json.Marshal(song)
		if err != nil {
			return err
		}
		chunks, n := sliceSongBytes(encoded)
		if err := writeUint32(h.comm, uint32(n)); err != nil {
			return err
		}
		for _, chunk := range chunks[:n-1] {
			if err := writeFull(h.comm, chunk); err != nil {
				return err
			}
		}
		last := chunks[n-1]
		if err := writeUint32(h.comm, uint32(len(last))); err != nil {
			return err
		}
		if err := writeFull(h.comm, last); err != nil {
			return err
		}
	}
	return h.bus.Emit(EventSearchHandled, SearchHandled{
		ClientID: h.fullID,
		Term:     term,
		Results:  len(songs),
	})
}

// streamingLoop reads song ids and pushes the corresponding audio until the
// connection breaks.
func (h *clientHandler) streamingLoop(ctx context.Context) {
	for {
		id, err := readUint32(h.stream)
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				h.log.Debug().Err(err).Msg("streaming channel closed")
			}
			return
		}
		if err := h.streamSong(ctx, int64(id)); err != nil {
			h.log.Debug().Err(err).Int64("song", int64(id)).Msg("stream failed")
			return
		}
	}
}

// streamSong sends the packet count followed by the audio packets, each
// prefixed with a type tag. A raised stop flag sends the exit tag instead of
// further data. Unknown ids send a count of zero. Only complete packets are
// sent; a trailing partial packet is dropped.
func (h *clientHandler) streamSong(ctx context.Context, id int64) error {
	path, err := h.store.SongFile(ctx, id)
	if library.IsSongNotFound(err) {
		return writeUint32(h.stream, 0)
	}
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		h.log.Warn().Err(err).Int64("song", id).Msg("audio file unreadable")
		return writeUint32(h.stream, 0)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	packets := int(info.Size() / packetSize)
	if err := writeUint32(h.stream, uint32(packets)); err != nil {
		return err
	}
	if err := h.bus.Emit(EventStreamStarted, StreamStarted{
		ClientID: h.fullID,
		SongID:   id,
		Packets:  packets,
	}); err != nil {
		return err
	}

	var (
		sent    int64
		aborted bool
		buf     = make([]byte, packetSize)
	)
	for i := 0; i < packets; i++ {
		if h.stopSend.CompareAndSwap(true, false) {
			aborted = true
			if err := writeFull(h.stream, tagExit); err != nil {
				return err
			}
			break
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return err
		}
		if err := writeFull(h.stream, tagData); err != nil {
			return err
		}
		if err := writeFull(h.stream, buf); err != nil {
			return err
		}
		sent += packetSize
	}
	return h.bus.Emit(EventStreamFinished, StreamFinished{
		ClientID: h.fullID,
		SongID:   id,
		Bytes:    sent,
		Aborted:  aborted,
	})
}
