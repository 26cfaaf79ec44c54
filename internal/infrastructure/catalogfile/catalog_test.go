package catalogfile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jhoicas/bodegas-api/internal/infrastructure/catalogfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Latin1(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="ISO-8859-1"?><catalogo>`)
	buf.WriteString(`<producto codigo=" TOR-1 " nombre="Tornillo ca`)
	buf.WriteByte(0xF1) // ñ en Latin-1
	buf.WriteString(`o" barras="7701234" categoria="Ferreter`)
	buf.WriteByte(0xED) // í
	buf.WriteString(`a"/>`)
	buf.WriteString(`<producto codigo="" nombre="Sin código"/>`)
	buf.WriteString(`<producto codigo="ARA-2" nombre="  "/>`)
	buf.WriteString(`</catalogo>`)

	items, err := catalogfile.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "TOR-1", items[0].Code)
	assert.Equal(t, "Tornillo caño", items[0].Name)
	assert.Equal(t, "Ferretería", items[0].Category)
	assert.Equal(t, "7701234", items[0].Barcode)
}

func TestDecode_UTF8(t *testing.T) {
	items, err := catalogfile.Decode(strings.NewReader(`<catalogo><producto codigo="A" nombre="Arandela" subcategoria="Planas"/></catalogo>`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Planas", items[0].Subcategory)
}

func TestDecode_UnknownCharset(t *testing.T) {
	_, err := catalogfile.Decode(strings.NewReader(`<?xml version="1.0" encoding="EBCDIC"?><catalogo/>`))
	assert.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := catalogfile.Decode(strings.NewReader(`<catalogo><producto`))
	assert.Error(t, err)
}
