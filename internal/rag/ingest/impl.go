package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

type DocType string

const (
	PDF   DocType = "pdf"
	DOCX  DocType = "docx"
	PLAIN DocType = "plain"
	WEB   DocType = "web"
	ERR   DocType = "unsupported"
)

var ErrUnsupportedType = errors.New("unsupported document type")

func getDocType(source string) DocType {
	if isURL(source) {
		return WEB
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".pdf":
		return PDF
	case ".docx", ".rtf", ".odt":
		return DOCX
	case ".txt", ".md", ".markdown", "":
		return PLAIN
	default:
		return ERR
	}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads a local file or fetches a URL and returns its documents. PDFs
// yield one document per page. The document id is the absolute path or the
// full URL unless name overrides it.
func (in *Ingester) Load(ctx context.Context, source string, name string) ([]commonModels.Document, error) {
	docType := getDocType(source)
	in.logger.Debug("Loading document", "source", source, "type", docType)

	if name == "" {
		name = defaultName(source)
	}

	switch docType {
	case WEB:
		doc, err := in.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		doc.Id = name
		if doc.Metadata == nil {
			doc.Metadata = commonModels.Metadata{}
		}
		doc.Metadata[commonModels.MetaDocId] = name
		return []commonModels.Document{doc}, nil
	case ERR:
		return nil, fmt.Errorf("%s: %w", source, ErrUnsupportedType)
	}

	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("document %s: %w", source, err)
	}

	var pages []rawPage
	var err error
	switch docType {
	case PDF:
		pages, err = in.extractPDF(source)
	case DOCX:
		pages, err = extractDocxRtfOdt(source)
	default:
		pages, err = readPlain(source)
	}
	if err != nil {
		return nil, err
	}

	docs := make([]commonModels.Document, 0, len(pages))
	for _, p := range pages {
		id := name
		meta := commonModels.Metadata{"source": source, commonModels.MetaDocId: name}
		if docType == PDF {
			id = fmt.Sprintf("%s-p%d", name, p.Number)
			meta["page"] = p.Number
		}
		docs = append(docs, commonModels.Document{Id: id, Content: p.Content, Metadata: meta})
	}
	return docs, nil
}

func defaultName(source string) string {
	if isURL(source) {
		return source
	}
	if abs, err := filepath.Abs(source); err == nil {
		return abs
	}
	return filepath.Clean(source)
}
