package fetcher

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeXMLElements collects every element with the given local name from the
// stream, decoded into T. NCBI efetch responses occasionally declare legacy
// charsets, so decoding goes through htmlindex rather than assuming UTF-8.
func DecodeXMLElements[T any](ctx context.Context, r io.Reader, elementName string) ([]T, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var items []T
	for {
		if err := ctx.Err(); err != nil {
			return items, eris.Wrap(err, "xml: context cancelled")
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return items, eris.Wrap(err, "xml: read token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elementName {
			continue
		}

		var item T
		if err := decoder.DecodeElement(&item, &se); err != nil {
			return items, eris.Wrap(err, "xml: decode element")
		}
		items = append(items, item)
	}
}
