package server

import (
	"bytes"
	"context"
	"io"
	"log"
	"time"
)

// ResponseCache stores encoded response bodies by key. cache.Cache satisfies it.
type ResponseCache interface {
	GetRaw(ctx context.Context, key string) ([]byte, error)
	SetRaw(ctx context.Context, key string, data []byte, expiration time.Duration) error
	Clear(ctx context.Context) error
}

// cacheWriter collects everything written to the response so the complete
// body can be stored once encoding succeeded.
type cacheWriter struct {
	key      string
	duration time.Duration
	buf      bytes.Buffer
	store    func(context.Context, string, []byte, time.Duration) error
}

func (cw *cacheWriter) Write(p []byte) (int, error) {
	return cw.buf.Write(p)
}

func (cw *cacheWriter) Commit(ctx context.Context) {
	if cw.store == nil || cw.buf.Len() == 0 {
		return
	}
	if err := cw.store(ctx, cw.key, cw.buf.Bytes(), cw.duration); err != nil {
		log.Printf("unable to cache %s: %v", cw.key, err)
	}
}

func MakeCacheWriter(w io.Writer, key string, duration time.Duration, setRaw func(context.Context, string, []byte, time.Duration) error) (io.Writer, *cacheWriter) {
	cw := &cacheWriter{
		key:      key,
		duration: duration,
		store:    setRaw,
	}
	return io.MultiWriter(w, cw), cw
}
