package genomes

import (
	"bufio"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/FlyBase/blast-db-configuration/pkg/errors"
)

// manifestName is the checksum manifest NCBI publishes inside every
// assembly directory.
const manifestName = "md5checksums.txt"

// ChecksumTable maps a bare filename to its reference MD5 checksum, scoped
// to one assembly directory's manifest.
type ChecksumTable map[string]string

// ParseChecksums reads a manifest where each line is
// "<checksum><whitespace><path>" and keys the table by the filename
// component of the path. Lines with the wrong token count are skipped with a
// diagnostic; a single bad line never aborts the parse.
func ParseChecksums(r io.Reader, logger *slog.Logger) ChecksumTable {
	table := make(ChecksumTable)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			logger.Debug("skipping malformed manifest line", "line", line)
			continue
		}
		table[path.Base(fields[1])] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("manifest read truncated", "error", err)
	}
	return table
}

// FetchChecksums streams the manifest inside assemblyPath. A fetch failure
// degrades to an empty table plus an error the caller logs; lookups then
// uniformly miss instead of aborting the organism.
func FetchChecksums(conn Retriever, assemblyPath string, logger *slog.Logger) (ChecksumTable, error) {
	manifest := assemblyPath + "/" + manifestName
	rc, err := conn.Retrieve(manifest)
	if err != nil {
		return ChecksumTable{}, errors.Wrap(errors.ErrCodeManifestUnavailable, "cannot fetch checksum manifest", err).
			WithComponent("genomes").
			WithContext("path", manifest)
	}
	defer rc.Close()

	return ParseChecksums(rc, logger), nil
}
