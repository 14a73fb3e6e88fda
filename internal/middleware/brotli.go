package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	Skipper   func(c *gin.Context) bool
	MinLength int
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
	Skipper:   nil,
}

// Spreadsheets are zip archives already; compressing them again only costs CPU.
var incompressibleTypes = []string{
	"application/vnd.openxmlformats-officedocument",
	"application/zip",
	"image/",
}

type brotliWriter struct {
	gin.ResponseWriter
	writer     *brotli.Writer
	quality    int
	buf        []byte
	minLength  int
	decided    bool
	compressed bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.decided {
		if bw.compressed {
			return bw.writer.Write(data)
		}
		return bw.ResponseWriter.Write(data)
	}

	bw.buf = append(bw.buf, data...)
	if len(bw.buf) < bw.minLength {
		return len(data), nil
	}

	bw.decide(true)
	if err := bw.drain(); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// decide fixes the encoding once enough of the body is known.
func (bw *brotliWriter) decide(large bool) {
	bw.decided = true
	if !large || incompressible(bw.ResponseWriter.Header().Get("Content-Type")) {
		return
	}
	bw.compressed = true
	bw.writer = brotli.NewWriterLevel(bw.ResponseWriter, bw.quality)
	bw.ResponseWriter.Header().Set("Content-Encoding", "br")
	bw.ResponseWriter.Header().Del("Content-Length")
}

func (bw *brotliWriter) drain() error {
	if len(bw.buf) == 0 {
		return nil
	}
	var err error
	if bw.compressed {
		_, err = bw.writer.Write(bw.buf)
	} else {
		_, err = bw.ResponseWriter.Write(bw.buf)
	}
	bw.buf = bw.buf[:0]
	return err
}

func (bw *brotliWriter) finish() error {
	if !bw.decided {
		bw.decide(false)
	}
	if err := bw.drain(); err != nil {
		return err
	}
	if bw.compressed {
		return bw.writer.Close()
	}
	return nil
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if cfg.Skipper != nil && cfg.Skipper(c) {
			c.Next()
			return
		}
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Writer = bw
		c.Next()
	}
}

func incompressible(contentType string) bool {
	for _, prefix := range incompressibleTypes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	ae := r.Header.Get("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		enc = strings.TrimSpace(strings.ToLower(enc))
		if enc == "br" || strings.HasPrefix(enc, "br;") {
			return true
		}
	}
	return false
}
