package sunat

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CDR (Constancia De Recepción): ApplicationResponse UBL que SUNAT devuelve
// dentro de un ZIP. ResponseCode "0" = aceptado; 2000-3999 = rechazo definitivo;
// 0100-1999 = excepción del servicio (reintentable).

// CDRInfo campos relevantes extraídos del ApplicationResponse.
type CDRInfo struct {
	ResponseCode string
	Description  string
}

// applicationResponse estructura mínima para desempaquetar el CDR.
type applicationResponse struct {
	XMLName          xml.Name `xml:"ApplicationResponse"`
	DocumentResponse struct {
		Response struct {
			ResponseCode string `xml:"ResponseCode"`
			Description  string `xml:"Description"`
		} `xml:"Response"`
	} `xml:"DocumentResponse"`
}

// ParseCDR desempaqueta el ZIP del CDR y extrae código y descripción del
// ApplicationResponse (archivo R-*.xml dentro del ZIP).
func ParseCDR(zipBytes []byte) (*CDRInfo, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("cdr: abrir ZIP: %w", err)
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("cdr: abrir %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, 1<<20)) // max 1 MB
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("cdr: leer %s: %w", f.Name, err)
		}
		var ar applicationResponse
		if err := xml.Unmarshal(data, &ar); err != nil {
			continue // puede haber otros XML en el ZIP; buscamos el ApplicationResponse
		}
		return &CDRInfo{
			ResponseCode: ar.DocumentResponse.Response.ResponseCode,
			Description:  ar.DocumentResponse.Response.Description,
		}, nil
	}
	return nil, fmt.Errorf("cdr: el ZIP no contiene un ApplicationResponse")
}

// ClassifyResponseCode mapea un código de respuesta SUNAT al estado normalizado.
//
//	"0"        → ACCEPTED (puede traer observaciones, sigue siendo aceptado)
//	2000-3999  → REJECTED (terminal)
//	0100-1999  → ERROR (excepción del servicio, reintentable)
//	otro       → ERROR (desconocido: tratar como transitorio, nunca como éxito)
func ClassifyResponseCode(code string) SubmitStatus {
	code = strings.TrimSpace(code)
	if code == "0" {
		return SubmitAccepted
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return SubmitError
	}
	if n == 0 {
		return SubmitAccepted
	}
	if n >= 2000 && n <= 3999 {
		return SubmitRejected
	}
	return SubmitError
}
