package genomes

import (
	"fmt"
	"io"
	"log/slog"
	"net/textproto"
	"strings"
	"sync"

	"github.com/jlaffaye/ftp"

	pkgerrors "github.com/FlyBase/blast-db-configuration/pkg/errors"
)

// fakeConn simulates an archive session from a static directory tree and
// manifest content.
type fakeConn struct {
	mu        sync.Mutex
	host      string
	dirs      map[string][]*ftp.Entry
	files     map[string]string
	listCalls map[string]int

	listErr map[string]error
	retrErr map[string]error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		host:      "ftp.ncbi.nlm.nih.gov",
		dirs:      make(map[string][]*ftp.Entry),
		files:     make(map[string]string),
		listCalls: make(map[string]int),
		listErr:   make(map[string]error),
		retrErr:   make(map[string]error),
	}
}

func (f *fakeConn) addDir(path string, names ...string) {
	var entries []*ftp.Entry
	for _, name := range names {
		entries = append(entries, &ftp.Entry{Name: name, Type: ftp.EntryTypeFolder})
	}
	f.dirs[path] = entries
}

func (f *fakeConn) addFiles(path string, names ...string) {
	for _, name := range names {
		f.dirs[path] = append(f.dirs[path], &ftp.Entry{Name: name, Type: ftp.EntryTypeFile})
	}
}

func (f *fakeConn) List(path string) ([]*ftp.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls[path]++
	if err := f.listErr[path]; err != nil {
		return nil, err
	}
	entries, ok := f.dirs[path]
	if !ok {
		return nil, notFoundErr()
	}
	return entries, nil
}

func (f *fakeConn) Retrieve(path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.retrErr[path]; err != nil {
		return nil, err
	}
	content, ok := f.files[path]
	if !ok {
		return nil, notFoundErr()
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeConn) Host() string { return f.host }

func (f *fakeConn) calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[path]
}

// notFoundErr mimics the coded error the ftpclient layer produces for a 550
// reply.
func notFoundErr() error {
	cause := &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "No such file or directory"}
	return pkgerrors.Wrap(pkgerrors.ErrCodePathNotFound, "remote path does not exist", cause)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func transientErr() error {
	return fmt.Errorf("read tcp: connection reset by peer")
}
