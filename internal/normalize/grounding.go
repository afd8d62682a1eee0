package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/models"
	"log/slog"
	"strings"
)

type groundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// groundingChunk holds every known shape of a citation. Exactly one is expected to be set.
type groundingChunk struct {
	Web            *groundingSource `json:"web"`
	Maps           *groundingSource `json:"maps"`
	GroundingChunk *struct {
		Web *groundingSource `json:"web"`
	} `json:"groundingChunk"`
}

type chunkVariant struct {
	defaultTitle string
	source       func(groundingChunk) *groundingSource
}

// chunkVariants are tried in order and the first one carrying a URI wins.
var chunkVariants = []chunkVariant{
	{defaultTitle: "Web Source", source: func(c groundingChunk) *groundingSource { return c.Web }},
	{defaultTitle: "Map Source", source: func(c groundingChunk) *groundingSource { return c.Maps }},
	{defaultTitle: "Web Source", source: func(c groundingChunk) *groundingSource {
		if c.GroundingChunk == nil {
			return nil
		}
		return c.GroundingChunk.Web
	}},
}

func (c groundingChunk) citation() (models.GroundingURL, bool) {
	for _, variant := range chunkVariants {
		src := variant.source(c)
		if src == nil {
			continue
		}
		uri := strings.TrimSpace(src.URI)
		if uri == "" {
			continue
		}
		title := strings.TrimSpace(src.Title)
		if title == "" {
			title = variant.defaultTitle
		}
		return models.GroundingURL{Title: title, URI: uri}, true
	}
	return models.GroundingURL{}, false
}

// decodeGrounding extracts citations from the grounding metadata side-channel in the order received.
//
// raw is either the metadata object holding "groundingChunks" or the bare chunk array.
func (n *Normalizer) decodeGrounding(ctx context.Context, raw json.RawMessage) []models.GroundingURL {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var chunks []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &chunks); err != nil {
			n.logger.LogAttrs(ctx, slog.LevelWarn, "could not decode grounding chunks", errors.SlogError(err))
			return nil
		}
	} else {
		var metadata struct {
			GroundingChunks []json.RawMessage `json:"groundingChunks"`
		}
		if err := json.Unmarshal(raw, &metadata); err != nil {
			n.logger.LogAttrs(ctx, slog.LevelWarn, "could not decode grounding metadata", errors.SlogError(err))
			return nil
		}
		chunks = metadata.GroundingChunks
	}

	var citations []models.GroundingURL
	for i, rawChunk := range chunks {
		var chunk groundingChunk
		if err := json.Unmarshal(rawChunk, &chunk); err != nil {
			n.logger.LogAttrs(ctx, slog.LevelDebug, "skipping malformed grounding chunk",
				slog.Int("index", i), errors.SlogError(err))
			continue
		}
		if citation, ok := chunk.citation(); ok {
			citations = append(citations, citation)
		}
	}
	return citations
}
