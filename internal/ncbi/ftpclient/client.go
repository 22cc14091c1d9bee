// Package ftpclient manages sessions against the NCBI genomes FTP archive.
//
// A session is scoped to one resolution call: dial, authenticate, perform a
// short ordered sequence of listings and retrievals, quit. The jlaffaye/ftp
// client only speaks passive-mode transfers, which is exactly what the
// archive expects from clients behind firewalls.
package ftpclient

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/FlyBase/blast-db-configuration/pkg/errors"
)

// DefaultHost is the NCBI genomes archive.
const DefaultHost = "ftp.ncbi.nlm.nih.gov"

// anonymousUser is the login for public archive access; the caller's
// contact identity travels in the password field per FTP convention.
const anonymousUser = "anonymous"

// Config describes how to reach and identify to the archive.
type Config struct {
	// Host is the archive host, with an optional :port (21 assumed).
	Host string

	// Identity is the contact string sent as the anonymous password.
	Identity string

	// ConnectTimeout bounds the dial; zero selects 30s.
	ConnectTimeout time.Duration
}

// Session is one authenticated connection to the archive.
type Session struct {
	conn   *ftp.ServerConn
	host   string
	logger *slog.Logger
}

// Dial opens and authenticates a session. Any failure is reported as a
// transport error; the caller decides whether the organism is skipped.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Session, error) {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	addr := host
	if !strings.Contains(addr, ":") {
		addr += ":21"
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := ftp.Dial(addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(timeout),
	)
	if err != nil {
		code := errors.ErrCodeConnectionFailed
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			code = errors.ErrCodeConnectionTimeout
		}
		return nil, errors.Wrap(code, "cannot reach archive", err).
			WithComponent("ftpclient").
			WithOperation("dial").
			WithContext("host", addr)
	}

	if err := conn.Login(anonymousUser, cfg.Identity); err != nil {
		// Best effort; the control connection may already be unusable.
		_ = conn.Quit()
		return nil, errors.Wrap(errors.ErrCodeAuthFailed, "anonymous login rejected", err).
			WithComponent("ftpclient").
			WithOperation("login").
			WithContext("host", addr)
	}

	logger.Debug("archive session opened", "host", addr)
	return &Session{conn: conn, host: host, logger: logger}, nil
}

// WithSession runs fn inside a scoped session and guarantees teardown on
// every exit path.
func WithSession(ctx context.Context, cfg Config, logger *slog.Logger, fn func(*Session) error) error {
	s, err := Dial(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// Host returns the archive host without any port suffix.
func (s *Session) Host() string {
	if h, _, err := net.SplitHostPort(s.host); err == nil {
		return h
	}
	return s.host
}

// List returns the immediate children of path. An absent path surfaces as
// PATH_NOT_FOUND, derived from the 550 reply code, never from message text.
func (s *Session) List(path string) ([]*ftp.Entry, error) {
	entries, err := s.conn.List(path)
	if err != nil {
		return nil, translate(err, "list", path)
	}
	return entries, nil
}

// Retrieve opens a download stream for the file at path. The caller owns
// the returned reader and must close it before issuing further commands on
// the session.
func (s *Session) Retrieve(path string) (io.ReadCloser, error) {
	resp, err := s.conn.Retr(path)
	if err != nil {
		return nil, translate(err, "retrieve", path)
	}
	return resp, nil
}

// Close terminates the session. Safe to defer immediately after Dial.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Quit()
	s.conn = nil
	if err != nil {
		s.logger.Debug("archive session close failed", "error", err)
	}
	return err
}

// translate maps protocol-level failures onto the resolution error taxonomy.
func translate(err error, op, path string) error {
	code := errors.ErrCodeListingFailed
	msg := "archive request failed"

	var perr *textproto.Error
	if errors.As(err, &perr) && perr.Code == ftp.StatusFileUnavailable {
		code = errors.ErrCodePathNotFound
		msg = "remote path does not exist"
	}

	return errors.Wrap(code, msg, err).
		WithComponent("ftpclient").
		WithOperation(op).
		WithContext("path", path)
}
