package records

import (
	"context"
	"strings"
)

const (
	filenameKey    = "Filename"
	downloadURLKey = "download_url"
)

// FilesNormalizer turns raw file-listing rows into file documents. File
// listings carry no embargo: they're visible as soon as they're imported.
type FilesNormalizer struct {
	// root URI files are served from; when set, rows naming a file get a
	// download URL derived from it
	FilesHost string
}

func NewFilesNormalizer(filesHost string) *FilesNormalizer {
	return &FilesNormalizer{FilesHost: filesHost}
}

func (n *FilesNormalizer) Category() Category {
	return Files
}

func (n *FilesNormalizer) Normalize(ctx context.Context, values Document) (Document, error) {
	doc := Document{}
	hoistIdentifier(doc, values, idKey, idKey)
	if len(doc) == 0 {
		return nil, &MissingIdentifierError{Field: idKey}
	}
	if filename := stringField(values, filenameKey); filename != "" && n.FilesHost != "" {
		values[downloadURLKey] = strings.TrimSuffix(n.FilesHost, "/") + "/" + filename
	}
	doc[Files.GroupName()] = values
	return doc, nil
}
