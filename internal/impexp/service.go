// Package impexp moves ledger snapshots in and out of the process in one
// of a closed set of formats.
package impexp

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

// Archive is the part of ledger.Archive used here
type Archive interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
	Import(ctx context.Context, snap ledger.Snapshot) (ledger.ImportResult, error)
}

type Service struct {
	archive Archive
	logger  *slog.Logger
}

func NewService(logger *slog.Logger, archive Archive) *Service {
	return &Service{
		archive: archive,
		logger:  logger.With("component", "impexp"),
	}
}

// Export writes the current snapshot to w
func (s *Service) Export(ctx context.Context, w io.Writer, format Format) error {
	c, ok := codecs[format]
	if !ok {
		return shared.Invalid(shared.RuleMalformedInput, "unsupported format %q", format)
	}

	snap, err := s.archive.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to take snapshot: %w", err)
	}

	if err := c.encode(w, fromSnapshot(snap)); err != nil {
		s.logger.Error("Failed to encode snapshot", "format", format, "error", err)
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}

	s.logger.Info("Snapshot exported",
		"format", format,
		"accounts", len(snap.Accounts),
		"operations", len(snap.Operations))
	return nil
}

// Import decodes a snapshot from r and loads it. Nothing is written when
// decoding or validation fails.
func (s *Service) Import(ctx context.Context, r io.Reader, format Format) (ledger.ImportResult, error) {
	c, ok := codecs[format]
	if !ok {
		return ledger.ImportResult{}, shared.Invalid(shared.RuleMalformedInput, "unsupported format %q", format)
	}

	doc, err := c.decode(r)
	if err != nil {
		s.logger.Warn("Failed to decode import", "format", format, "error", err)
		return ledger.ImportResult{}, shared.Invalid(shared.RuleMalformedInput, "cannot decode %s: %v", format, err)
	}

	snap, err := doc.toSnapshot()
	if err != nil {
		return ledger.ImportResult{}, err
	}

	return s.archive.Import(ctx, snap)
}
