package archive

import (
	"encoding/xml"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Draaaaaaven/ecad/pkg/errors"
)

var xmlRoot = xml.StartElement{Name: xml.Name{Local: "database"}}

func encodeXML(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.EncodeElement(withVersion(doc), xmlRoot); err != nil {
		return fmt.Errorf("xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func decodeXML(r io.Reader) (*Document, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != xmlRoot.Name.Local {
			return nil, fmt.Errorf("xml: root element is <%s>, want <%s>", start.Name.Local, xmlRoot.Name.Local)
		}
		if err := dec.DecodeElement(&doc, &start); err != nil {
			return nil, fmt.Errorf("xml: %w", err)
		}
		return &doc, nil
	}
}

// checkXMLStrings rejects names and texts that encoding/xml would replace
// with U+FFFD.
func checkXMLStrings(doc *Document) error {
	check := func(what, s string) error {
		if i := invalidXMLChar(s); i >= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s %q has a character XML cannot hold at byte %d", what, s, i)
		}
		return nil
	}
	checkMap := func(lm *LayerMap) error {
		if lm == nil {
			return nil
		}
		return check("layer map", lm.Name)
	}

	if err := check("database", doc.Name); err != nil {
		return err
	}
	for i := range doc.LayerMaps {
		if err := checkMap(&doc.LayerMaps[i]); err != nil {
			return err
		}
	}
	for _, d := range doc.PadstackDefs {
		if err := check("padstack def", d.Name); err != nil {
			return err
		}
		if err := check("padstack material", d.Material); err != nil {
			return err
		}
		for _, p := range d.Pads {
			if err := check("pad layer", p.Layer); err != nil {
				return err
			}
		}
	}
	for _, c := range doc.Cells {
		if err := check("cell", c.Name); err != nil {
			return err
		}
		l := c.Layout
		if err := check("layout", l.Name); err != nil {
			return err
		}
		for _, x := range l.Layers {
			for _, s := range []string{x.Name, x.ConductingMaterial, x.DielectricMaterial} {
				if err := check("layer", s); err != nil {
					return err
				}
			}
		}
		for _, n := range l.Nets {
			if err := check("net", n.Name); err != nil {
				return err
			}
		}
		for _, p := range l.PadstackInsts {
			if err := check("padstack instance", p.Name); err != nil {
				return err
			}
			if err := checkMap(p.InlineMap); err != nil {
				return err
			}
		}
		for _, ci := range l.CellInsts {
			if err := check("cell instance", ci.Name); err != nil {
				return err
			}
		}
		for _, p := range l.Primitives {
			if err := check("text", p.Text); err != nil {
				return err
			}
			if err := check("bondwire", p.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// invalidXMLChar returns the byte offset of the first rune outside the XML
// Char production, or -1.
func invalidXMLChar(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return i
			}
		}
		switch {
		case r == 0x9, r == 0xA, r == 0xD:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= utf8.MaxRune:
		default:
			return i
		}
	}
	return -1
}
