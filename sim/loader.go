package sim

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// LoadProcesses reads the workload file at URL and decodes its records in file order.
// URL may be a local path or any scheme registered with afs (file://, mem://).
// Every failure is wrapped in ErrStorage.
func LoadProcesses(ctx context.Context, fs afs.Service, URL string) ([]*Process, error) {
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("%w: checking %s: %v", ErrStorage, URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: cannot open file %s", ErrStorage, URL)
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file %s: %v", ErrStorage, URL, err)
	}
	procs, err := DecodeProcesses(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", URL, err)
	}
	logrus.Debugf("Loaded %d processes (%d bytes) from %s", len(procs), len(data), URL)
	return procs, nil
}

// SaveProcesses encodes procs and writes them to URL, replacing any existing content.
func SaveProcesses(ctx context.Context, fs afs.Service, URL string, procs []*Process) error {
	data, err := EncodeProcesses(procs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStorage, URL, err)
	}
	return nil
}
