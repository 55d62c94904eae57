// Package xmlfeed parses the MOENV station and air-quality XML exports.
package xmlfeed

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/couchcryptid/air-station-etl/internal/domain"
)

// openFeed opens path for reading. A missing path, or one naming a directory,
// wraps domain.ErrMissingFile.
func openFeed(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat feed: %w", err)
	}
	return os.Open(path)
}

// readDocument parses r and returns its root element.
func readDocument(r io.Reader) (*etree.Element, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFeed, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", domain.ErrMalformedFeed)
	}
	return root, nil
}

// childText returns the text of el's first child named tag and whether the
// child exists. A child with no text reads as "".
func childText(el *etree.Element, tag string) (string, bool) {
	c := el.SelectElement(tag)
	if c == nil {
		return "", false
	}
	return c.Text(), true
}

// trimmedText returns the trimmed text of el's child tag, or "" if missing.
func trimmedText(el *etree.Element, tag string) string {
	s, _ := childText(el, tag)
	return strings.TrimSpace(s)
}
