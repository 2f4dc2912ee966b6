package store

import (
	"context"
	"fmt"

	"support-bot/internal/botlog"
	"support-bot/internal/embedding"
	"support-bot/internal/loader"
	"support-bot/internal/splitter"
)

// IndexDocument loads the document at path, splits and embeds it, and
// replaces its sections in the store. The document path doubles as the
// stable store key so re-indexing the same file overwrites cleanly. Returns
// the number of sections stored.
func IndexDocument(ctx context.Context, lg *botlog.Logger, db *DB, embedder embedding.Embedder, path string) (int, error) {
	if lg == nil {
		lg = botlog.Discard()
	}

	doc, err := loader.Load(path)
	if err != nil {
		lg.Event(botlog.StageLoad, "falling back to generated sample FAQ: %v", err)
		doc, err = loader.EnsureDefault(path)
		if err != nil {
			return 0, err
		}
	}
	lg.Event(botlog.StageLoad, "document=%s format=%s bytes=%d", doc.Path, doc.Format, len(doc.Text))

	sections := splitter.Split(doc.Text)
	if len(sections) == 0 {
		return 0, fmt.Errorf("document %s contains no sections", doc.Path)
	}
	lg.Event(botlog.StageSplit, "document=%s sections=%d", doc.Path, len(sections))

	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed sections: %w", err)
	}
	for i := range sections {
		sections[i].Embedding = vectors[i]
	}
	lg.Event(botlog.StageEmbed, "document=%s vectors=%d", doc.Path, len(vectors))

	if err := db.Initialize(ctx, len(vectors[0])); err != nil {
		return 0, err
	}
	if err := db.ReplaceDocument(ctx, doc.Path, sections); err != nil {
		return 0, err
	}

	return len(sections), nil
}
