package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/cellocad/cello-webapp/sbol"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// DefaultAttachmentConcurrency bounds parallel attachment fetches.
const DefaultAttachmentConcurrency = 4

// AttachmentFetcher retrieves the content of an SBOL attachment.
type AttachmentFetcher interface {
	FetchAttachment(ctx context.Context, att *sbol.Attachment) ([]byte, error)
}

// FetcherFunc adapts a function to AttachmentFetcher.
type FetcherFunc func(ctx context.Context, att *sbol.Attachment) ([]byte, error)

// FetchAttachment calls f.
func (f FetcherFunc) FetchAttachment(ctx context.Context, att *sbol.Attachment) ([]byte, error) {
	return f(ctx, att)
}

// AttachmentName returns the name an attachment is known by: its title or
// display id without a ".json" suffix.
func AttachmentName(att *sbol.Attachment) string {
	name := att.Name
	if name == "" {
		name = att.DisplayID
	}
	return strings.TrimSuffix(name, ".json")
}

// IsJSONAttachment reports whether att holds JSON, by format or file name.
func IsJSONAttachment(att *sbol.Attachment) bool {
	if att.Format == sbolvocab.FormatJSON {
		return true
	}
	return strings.HasSuffix(strings.ToLower(att.Name), ".json") ||
		strings.HasSuffix(strings.ToLower(att.DisplayID), "_json")
}

// fetchObjects fetches atts with at most limit requests in flight and
// returns their JSON objects in attachment order. Array documents are
// flattened into their elements.
func fetchObjects(ctx context.Context, fetch AttachmentFetcher, atts []*sbol.Attachment, limit int) ([]json.RawMessage, error) {
	if len(atts) == 0 {
		return nil, nil
	}
	if fetch == nil {
		return nil, newError(atts[0].URI, "fetch attachment", fmt.Errorf("%w: no fetcher configured", ErrAttachment))
	}
	if limit < 1 {
		limit = DefaultAttachmentConcurrency
	}

	results := make([][]json.RawMessage, len(atts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, att := range atts {
		g.Go(func() error {
			data, err := fetch.FetchAttachment(gctx, att)
			if err != nil {
				return newError(att.URI, "fetch attachment", fmt.Errorf("%w: %w", ErrAttachment, err))
			}
			objs, err := splitObjects(data)
			if err != nil {
				return newError(att.URI, "decode attachment", err)
			}
			results[i] = objs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []json.RawMessage
	for _, objs := range results {
		out = append(out, objs...)
	}
	return out, nil
}

// splitObjects validates a JSON document and returns it as a list of
// objects.
func splitObjects(data []byte) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrAttachment)
	}
	res := gjson.ParseBytes(data)
	switch {
	case res.IsObject():
		return []json.RawMessage{json.RawMessage(strings.TrimSpace(res.Raw))}, nil
	case res.IsArray():
		var out []json.RawMessage
		var bad error
		res.ForEach(func(_, v gjson.Result) bool {
			if !v.IsObject() {
				bad = fmt.Errorf("%w: array element is %s, not an object", ErrAttachment, v.Type)
				return false
			}
			out = append(out, json.RawMessage(v.Raw))
			return true
		})
		if bad != nil {
			return nil, bad
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected object or array, got %s", ErrAttachment, res.Type)
	}
}

// jsonAttachments resolves the JSON attachments referenced by uris.
func jsonAttachments(doc *sbol.Document, owner string, uris []string) ([]*sbol.Attachment, error) {
	var out []*sbol.Attachment
	for _, uri := range uris {
		att := doc.Attachment(uri)
		if att == nil {
			return nil, newError(owner, "attachment", fmt.Errorf("%w: %s", ErrMissingDefinition, uri))
		}
		if IsJSONAttachment(att) {
			out = append(out, att)
		}
	}
	return out, nil
}
