package clipboard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	"github.com/rimgik/clipper/internal/proto"
)

// System reads and writes the native clipboard. Text goes through the
// system clipboard directly; received files are written into the download
// directory because no portable clipboard API carries file contents.
type System struct {
	downloadDir string
}

func NewSystem(downloadDir string) *System {
	return &System{downloadDir: downloadDir}
}

func (s *System) Current() (*proto.Payload, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return proto.TextPayload(text), nil
}

func (s *System) Apply(p *proto.Payload) error {
	switch {
	case p == nil:
		return nil
	case p.Kind == proto.PayloadText:
		if err := clipboard.WriteAll(p.Text); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		return nil
	case p.Kind == proto.PayloadFile:
		if err := os.MkdirAll(s.downloadDir, 0o700); err != nil {
			return err
		}
		// Base strips any path components a remote peer may have framed.
		name := filepath.Base(p.Name)
		if name == "." || name == string(filepath.Separator) {
			return fmt.Errorf("%w: file name %q", proto.ErrUnsupportedPayload, p.Name)
		}
		return os.WriteFile(filepath.Join(s.downloadDir, name), p.Data, 0o600)
	default:
		return fmt.Errorf("%w: %s", proto.ErrUnsupportedPayload, p)
	}
}
