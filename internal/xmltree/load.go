package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"

	"github.com/anstrom/nmapconv/internal/errors"
	"github.com/anstrom/nmapconv/internal/logging"
)

// Load opens and parses the document at path.
//
// A path that cannot be opened as a regular file yields a FILE_NOT_FOUND error;
// content that is not well-formed yields a PARSE_ERROR carrying the decoder's
// diagnostic.
func Load(path string) (*Node, error) {
	file, err := os.Open(path) //nolint:gosec // path is the operator's input document
	if err != nil {
		return nil, errors.ErrFileNotFound(path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("Failed to close input file", "path", path, "error", err)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.ErrFileNotFound(path, err)
	}
	if info.IsDir() {
		return nil, errors.ErrFileNotFound(path, fmt.Errorf("%s is a directory", path))
	}

	root, err := Parse(file)
	if err != nil {
		return nil, errors.ErrParse(path, err)
	}
	return root, nil
}

// Parse reads a complete document from r and returns its root element.
// Comments, processing instructions and directives are skipped.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, syntaxError(dec, "junk after document element")
			}
			n := &Node{
				name:  qualifiedName(t.Name),
				attrs: append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, syntaxError(dec, "text outside document element")
				}
				continue
			}
			top := stack[len(stack)-1]
			if len(top.children) == 0 {
				top.text += string(t)
			}
		}
	}

	if root == nil {
		return nil, syntaxError(dec, "no element found")
	}
	if len(stack) != 0 {
		return nil, syntaxError(dec, "unexpected EOF")
	}
	return root, nil
}

func syntaxError(dec *xml.Decoder, msg string) *xml.SyntaxError {
	line, _ := dec.InputPos()
	return &xml.SyntaxError{Msg: msg, Line: line}
}

// qualifiedName renders a namespaced element as "{uri}local" so that lookups
// by bare tag only match elements outside any namespace.
func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return "{" + name.Space + "}" + name.Local
}
