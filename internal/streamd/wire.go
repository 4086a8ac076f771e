package streamd

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// clientIDLen is the fixed handshake id a client sends on connect.
	clientIDLen = 6
	// chunkSize slices serialized song metadata on the communication channel.
	chunkSize = 1024
	// packetSize is the audio payload size on the streaming channel.
	packetSize = 4096
	// maxFrameLen bounds communication request frames.
	maxFrameLen = 1 << 16
)

// Streaming channel type tags, 4 bytes each.
var (
	tagData = []byte("data")
	tagExit = []byte("exit")
)

// readUint32 reads one little-endian length word.
func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// writeUint32 writes one little-endian length word.
func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return writeFull(w, buf[:])
}

// readFrame reads a length-prefixed communication request.
func readFrame(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n > maxFrameLen {
		return nil, fmt.Errorf("frame length %d exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeFrame writes a length-prefixed communication payload.
func writeFrame(w io.Writer, payload []byte) error {
	if err := writeUint32(w, uint32(len(payload))); err != nil {
		return err
	}
	return writeFull(w, payload)
}

// writeFull writes all of b, retrying short writes.
func writeFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// sliceSongBytes splits a serialized song into chunkSize-byte slices and
// returns them with their count. Empty input yields no chunks.
func sliceSongBytes(b []byte) ([][]byte, int) {
	var chunks [][]byte
	for i := 0; i < len(b); i += chunkSize {
		end := i + chunkSize
		if end > len(b) {
			end = len(b)
		}
		chunks = append(chunks, b[i:end])
	}
	return chunks, len(chunks)
}
