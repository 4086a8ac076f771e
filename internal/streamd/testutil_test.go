package streamd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"songd/internal/events"
	"songd/internal/library"
	"songd/pkg/types"
)

// newTestStore builds an initialized library with one song and a synthetic
// audio file of audioSize bytes. Returns the store and the song id.
func newTestStore(t *testing.T, audioSize int) *library.Store {
	t.Helper()
	dir := t.TempDir()
	songsDir := filepath.Join(dir, "songs")
	if err := os.MkdirAll(songsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	audio := make([]byte, audioSize)
	for i := range audio {
		audio[i] = byte(i % 251)
	}
	if err := os.WriteFile(filepath.Join(songsDir, "xenogenesis.wav"), audio, 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	st, err := library.Open(filepath.Join(dir, "songs.db"), songsDir, filepath.Join(dir, "images"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("init store: %v", err)
	}
	err = st.Add(ctx, library.Record{
		ID: 3, Name: "Xenogenesis", Artist: "TheFatRat", Duration: 233,
		SongFile: "xenogenesis.wav", ImageFile: "xenogenesis.png",
	})
	if err != nil {
		t.Fatalf("add song: %v", err)
	}
	return st
}

// eventRecorder captures fired event names for assertions, the same idea as
// an in-memory publisher.
type eventRecorder struct {
	mu    sync.Mutex
	names []string
}

func recordEvents(bus *events.Bus, names ...string) *eventRecorder {
	rec := &eventRecorder{}
	l := bus.NewListener()
	for _, name := range names {
		name := name
		l.Listen(name, func(events.Event) error {
			rec.mu.Lock()
			rec.names = append(rec.names, name)
			rec.mu.Unlock()
			return nil
		})
	}
	return rec
}

func (r *eventRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.names {
		if v == name {
			n++
		}
	}
	return n
}

func (r *eventRecorder) waitFor(t *testing.T, name string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.count(name) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("event %q was never fired; saw %v", name, r.names)
}

// readSearchResponse decodes the chunked search reply from r.
func readSearchResponse(t *testing.T, r io.Reader) []types.Song {
	t.Helper()
	count, err := readUint32(r)
	if err != nil {
		t.Fatalf("read result count: %v", err)
	}
	songs := make([]types.Song, 0, count)
	for i := uint32(0); i < count; i++ {
		n, err := readUint32(r)
		if err != nil {
			t.Fatalf("read chunk count: %v", err)
		}
		var payload []byte
		for j := uint32(0); j+1 < n; j++ {
			chunk := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, chunk); err != nil {
				t.Fatalf("read chunk: %v", err)
			}
			payload = append(payload, chunk...)
		}
		lastLen, err := readUint32(r)
		if err != nil {
			t.Fatalf("read last chunk length: %v", err)
		}
		last := make([]byte, lastLen)
		if _, err := io.ReadFull(r, last); err != nil {
			t.Fatalf("read last chunk: %v", err)
		}
		payload = append(payload, last...)
		var song types.Song
		if err := json.Unmarshal(payload, &song); err != nil {
			t.Fatalf("decode song: %v (payload %q)", err, payload)
		}
		songs = append(songs, song)
	}
	return songs
}
