package httpapi

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"time"
)

// loggedResponse captures the status code and body size on the way out.
type loggedResponse struct {
	http.ResponseWriter
	code int
	size int
}

func (lr *loggedResponse) WriteHeader(code int) {
	lr.code = code
	lr.ResponseWriter.WriteHeader(code)
}

func (lr *loggedResponse) Write(p []byte) (int, error) {
	if lr.code == 0 {
		lr.code = http.StatusOK
	}
	n, err := lr.ResponseWriter.Write(p)
	lr.size += n
	return n, err
}

// Hijack passes through so the websocket upgrade keeps working behind the
// logger.
func (lr *loggedResponse) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := lr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// RequestLogger emits one line per finished request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lr := &loggedResponse{ResponseWriter: w}
		next.ServeHTTP(lr, r)
		code := lr.code
		if code == 0 {
			code = http.StatusOK
		}
		log.Printf("http %s %s -> %d (%dB in %s)", r.Method, r.URL.Path, code, lr.size, time.Since(start))
	})
}
