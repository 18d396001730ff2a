package line

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Server accepts TCP connections and hands each to the line handler.
type Server struct {
	logger  *slog.Logger
	handler *Handler
}

func NewServer(logger *slog.Logger, handler *Handler) *Server {
	return &Server{
		logger:  logger.With("component", "tcp_server"),
		handler: handler,
	}
}

// Start listens on port and serves until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	return that.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is done, then waits for
// the open connections to finish.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	that.logger.Info("accepting connections", "addr", listener.Addr().String())

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			that.handler.Serve(ctx, newTCPConn(conn), conn.RemoteAddr().String())
		}()
	}
}

type tcpConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
	writer  *bufio.Writer
}

func newTCPConn(conn net.Conn) *tcpConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 256), MaxLineLength)

	return &tcpConn{
		conn:    conn,
		scanner: scanner,
		writer:  bufio.NewWriter(conn),
	}
}

// ReadLine fails with bufio.ErrTooLong once a line exceeds MaxLineLength.
func (that *tcpConn) ReadLine() (string, error) {
	if !that.scanner.Scan() {
		if err := that.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	return that.scanner.Text(), nil
}

func (that *tcpConn) WriteLines(lines []string) error {
	for _, text := range lines {
		if _, err := that.writer.WriteString(text + "\n"); err != nil {
			return err
		}
	}

	return that.writer.Flush()
}

func (that *tcpConn) Close() error {
	return that.conn.Close()
}
