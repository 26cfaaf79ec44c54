// Package catalogfile lee catálogos de productos exportados en XML por sistemas heredados.
//
// Formato esperado:
//
//	<?xml version="1.0" encoding="ISO-8859-1"?>
//	<catalogo>
//	  <producto codigo="TOR-1" nombre="Tornillo" barras="7701234" categoria="Ferretería" subcategoria="Tornillos"/>
//	</catalogo>
package catalogfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Item un producto del archivo.
type Item struct {
	Code        string `xml:"codigo,attr"`
	Name        string `xml:"nombre,attr"`
	Barcode     string `xml:"barras,attr"`
	Category    string `xml:"categoria,attr"`
	Subcategory string `xml:"subcategoria,attr"`
}

type catalog struct {
	Items []Item `xml:"producto"`
}

// Decode lee el catálogo y descarta filas sin código o sin nombre. Soporta ISO-8859-1 y Windows-1252.
func Decode(r io.Reader) ([]Item, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	var c catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}
	out := make([]Item, 0, len(c.Items))
	for _, it := range c.Items {
		it.Code = strings.TrimSpace(it.Code)
		it.Name = strings.TrimSpace(it.Name)
		if it.Code == "" || it.Name == "" {
			continue
		}
		it.Barcode = strings.TrimSpace(it.Barcode)
		it.Category = strings.TrimSpace(it.Category)
		it.Subcategory = strings.TrimSpace(it.Subcategory)
		out = append(out, it)
	}
	return out, nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	case "utf-8", "utf8", "":
		return input, nil
	}
	return nil, fmt.Errorf("codificación no soportada: %s", charset)
}
