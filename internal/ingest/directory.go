package ingest

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
)

// IngestDirectory walks root, registers every matching file and returns
// per-file results plus aggregate counters. Unreadable entries are recorded
// and the walk continues; only a broken root aborts it.
func (s *Service) IngestDirectory(ctx context.Context, root string, includeExts []string, priority constants.Priority, enqueue bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError(common.CodeInvalid, "root path is required", nil)
	}

	exts := map[string]struct{}{}
	if len(includeExts) == 0 {
		for e := range constants.AllowedExtensions {
			exts[e] = struct{}{}
		}
	} else {
		for _, e := range includeExts {
			e = constants.NormalizeExt(e)
			if e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // keep walking
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := exts[ext]; !ok {
			return nil
		}
		stats.Matched++

		doc, dedup, err := s.RegisterFile(ctx, path, priority, enqueue)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, IngestionResult{
			SourcePath:   path,
			DocumentID:   doc.ID.String(),
			Deduplicated: dedup,
			HashHex:      doc.ContentHash,
			Enqueued:     doc.Status == constants.DocumentQueued,
		})
		stats.Succeeded++
		if dedup {
			stats.Deduplicated++
		}
		return nil
	})

	s.logger.Info("ingest.directory.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	if err != nil {
		return results, stats, common.NewAppError(common.CodeStorage, "walking directory", err)
	}
	return results, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
