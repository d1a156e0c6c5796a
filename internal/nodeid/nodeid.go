// Package nodeid manages the persistent identity of one segqueue host
// process. A node's ULID is generated once and stored in its data
// directory, then reused across restarts; it is not part of any actor's
// persisted state and carries no meaning to the queue engine itself —
// it exists so logs and cold-tier diagnostics can be correlated back to
// the process that wrote them.
package nodeid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const idFile = "node_id"

// Resolve returns the node id for dataDir: the override if one is given
// and not "auto", otherwise the id persisted in dataDir, generating and
// persisting a fresh one on first use.
func Resolve(dataDir, override string) (string, error) {
	if dataDir == "" {
		return "", errors.New("nodeid: dataDir must not be empty")
	}
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return "", fmt.Errorf("nodeid: create data dir: %w", err)
	}

	if override != "" && override != "auto" {
		if _, err := ulid.ParseStrict(override); err != nil {
			return "", fmt.Errorf("nodeid: invalid override %q: %w", override, err)
		}
		return override, nil
	}

	return loadOrGenerate(dataDir)
}

func loadOrGenerate(dataDir string) (string, error) {
	path := filepath.Join(dataDir, idFile)

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if _, err := ulid.ParseStrict(id); err != nil {
			return "", fmt.Errorf("nodeid: persisted id %q is invalid: %w", id, err)
		}
		return id, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("nodeid: read id file: %w", err)
	}

	id, err := generate()
	if err != nil {
		return "", fmt.Errorf("nodeid: generate id: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o640); err != nil {
		return "", fmt.Errorf("nodeid: persist id: %w", err)
	}
	return id, nil
}

var (
	monoMu      sync.Mutex
	monoEntropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

func generate() (string, error) {
	monoMu.Lock()
	defer monoMu.Unlock()
	ms := ulid.Timestamp(time.Now())
	id, err := ulid.New(ms, monoEntropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
