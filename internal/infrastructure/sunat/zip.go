package sunat

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// CompressXMLToZip empaqueta el XML firmado en un ZIP en memoria.
// SUNAT exige que el ZIP contenga un único archivo con el nombre:
//
//	{RUC}-{TipoComprobante}-{Serie}-{Correlativo}.xml
//
// Devuelve los bytes del ZIP listo para enviar al billService.
func CompressXMLToZip(xmlBytes []byte, xmlFilename string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	fw, err := zw.Create(xmlFilename)
	if err != nil {
		return nil, fmt.Errorf("zip: crear entrada %s: %w", xmlFilename, err)
	}
	if _, err := fw.Write(xmlBytes); err != nil {
		return nil, fmt.Errorf("zip: escribir XML: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}

// Filenames genera los nombres de archivo requeridos por SUNAT para el XML y el ZIP.
// Ejemplo: 20131312955-01-F001-123.xml / .zip
func Filenames(doc *Document) (xmlName, zipName string) {
	base := fmt.Sprintf("%s-%s-%s-%d", doc.RUC, doc.DocumentType, doc.Series, doc.Correlative)
	return base + ".xml", base + ".zip"
}
