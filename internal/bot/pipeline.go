package bot

import (
	"context"
	"fmt"

	"support-bot/internal/botlog"
	"support-bot/internal/embedding"
	"support-bot/internal/index"
	"support-bot/internal/loader"
	"support-bot/internal/models"
	"support-bot/internal/splitter"
)

// LoadAndIndex loads the document at path, splits it into sections and
// builds an in-memory index, logging each stage. A load failure falls back
// to the generated sample FAQ rather than aborting.
func LoadAndIndex(ctx context.Context, lg *botlog.Logger, embedder embedding.Embedder, path string, threshold float64) (*models.Document, *index.Index, error) {
	if lg == nil {
		lg = botlog.Discard()
	}

	doc, err := loader.Load(path)
	if err != nil {
		lg.Event(botlog.StageLoad, "falling back to generated sample FAQ: %v", err)
		doc, err = loader.EnsureDefault(path)
		if err != nil {
			lg.Event(botlog.StageLoad, "default document fallback failed: %v", err)
			doc = loader.Generated(path)
		}
	}
	lg.Event(botlog.StageLoad, "document=%s format=%s bytes=%d", doc.Path, doc.Format, len(doc.Text))

	sections := splitter.Split(doc.Text)
	if len(sections) == 0 {
		return nil, nil, fmt.Errorf("document %s contains no sections", doc.Path)
	}
	lg.Event(botlog.StageSplit, "document=%s sections=%d", doc.Path, len(sections))

	ix := index.New(embedder, threshold)
	if err := ix.Build(ctx, sections); err != nil {
		return nil, nil, err
	}
	lg.Event(botlog.StageEmbed, "document=%s vectors=%d", doc.Path, ix.Len())

	return doc, ix, nil
}
