package sunat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/clinsalud/clinica-api/internal/domain"
)

// ── Implementación SOAP (billService SUNAT) ──────────────────────────────────

const (
	soapNS        = "http://schemas.xmlsoap.org/soap/envelope/"
	wsseNS        = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	sunatServNS   = "http://service.sunat.gob.pe"
	soapActionURN = "urn:sendBill"
)

// SOAPConfig credenciales y entorno del WS billService.
// El usuario del UsernameToken es RUC+usuario secundario SOL.
type SOAPConfig struct {
	Environment string // "beta" | "prod"
	Endpoint    string // vacío = URL por defecto del entorno
	RUC         string
	SolUser     string
	SolPassword string
}

// SOAPClient implementa Submitter contra el WS SOAP de SUNAT (operación sendBill).
// Usa net/http de la stdlib; no requiere librerías de terceros.
type SOAPClient struct {
	cfg        SOAPConfig
	httpClient *http.Client
}

// NewSOAPClient construye el cliente con un timeout de red generoso (60 s),
// ya que el billService puede tardar varios segundos en responder.
func NewSOAPClient(cfg SOAPConfig) *SOAPClient {
	return &SOAPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

var _ Submitter = (*SOAPClient)(nil)

// ── Estructuras SOAP ─────────────────────────────────────────────────────────

type soapEnvelope struct {
	XMLName   xml.Name   `xml:"soapenv:Envelope"`
	XmlnsEnv  string     `xml:"xmlns:soapenv,attr"`
	XmlnsSer  string     `xml:"xmlns:ser,attr"`
	XmlnsWsse string     `xml:"xmlns:wsse,attr"`
	Header    soapHeader `xml:"soapenv:Header"`
	Body      soapBody   `xml:"soapenv:Body"`
}

type soapHeader struct {
	Security wsseSecurity `xml:"wsse:Security"`
}

type wsseSecurity struct {
	UsernameToken wsseUsernameToken `xml:"wsse:UsernameToken"`
}

type wsseUsernameToken struct {
	Username string `xml:"wsse:Username"`
	Password string `xml:"wsse:Password"`
}

type soapBody struct {
	SendBill sendBillBody `xml:"ser:sendBill"`
}

type sendBillBody struct {
	FileName    string `xml:"fileName"`
	ContentFile string `xml:"contentFile"` // ZIP en Base64
}

// ── Estructuras de respuesta ─────────────────────────────────────────────────

type soapResponseEnvelope struct {
	Body soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	SendBillResponse *sendBillResponse `xml:"sendBillResponse"`
	Fault            *soapFault        `xml:"Fault"`
}

type sendBillResponse struct {
	ApplicationResponse string `xml:"applicationResponse"` // ZIP del CDR en Base64
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// ── Submit ───────────────────────────────────────────────────────────────────

// Submit envía el comprobante firmado al billService y clasifica la respuesta.
// Los fallos de red y los 5xx se devuelven como SubmitResult{Status: ERROR},
// nunca se silencian ni se convierten en éxito.
func (c *SOAPClient) Submit(ctx context.Context, doc *Document) (*SubmitResult, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if doc == nil || len(doc.SignedXML) == 0 {
		return nil, fmt.Errorf("soap: documento vacío: %w", domain.ErrInvalidInvoiceState)
	}

	xmlName, zipName := Filenames(doc)
	zipBytes, err := CompressXMLToZip(doc.SignedXML, xmlName)
	if err != nil {
		return nil, err
	}

	envelope := soapEnvelope{
		XmlnsEnv:  soapNS,
		XmlnsSer:  sunatServNS,
		XmlnsWsse: wsseNS,
		Header: soapHeader{
			Security: wsseSecurity{
				UsernameToken: wsseUsernameToken{
					Username: c.cfg.RUC + c.cfg.SolUser,
					Password: c.cfg.SolPassword,
				},
			},
		},
		Body: soapBody{
			SendBill: sendBillBody{
				FileName:    zipName,
				ContentFile: base64.StdEncoding.EncodeToString(zipBytes),
			},
		},
	}

	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("soap: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("soap: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapActionURN)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeout sin respuesta = resultado desconocido: clasificar como ERROR
		// para que el orquestador deje el comprobante reintentable con el mismo
		// correlativo y el mismo XML.
		return &SubmitResult{
			Status:  SubmitError,
			Message: fmt.Sprintf("llamada a billService falló: %v", err),
		}, nil
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // max 4 MB
	if err != nil {
		return &SubmitResult{
			Status:  SubmitError,
			Message: fmt.Sprintf("leer respuesta billService: %v", err),
		}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Los SOAP Fault llegan con HTTP 500: igual intentamos parsear el fault
		// para distinguir un rechazo definitivo de un error del servicio.
		if result := parseFaultBody(rawBody); result != nil {
			return result, nil
		}
		return &SubmitResult{
			Status:  SubmitError,
			Message: fmt.Sprintf("billService respondió HTTP %d", resp.StatusCode),
		}, nil
	}

	return c.parseResponse(rawBody)
}

func (c *SOAPClient) validate() error {
	if c.cfg.RUC == "" || c.cfg.SolUser == "" || c.cfg.SolPassword == "" {
		return fmt.Errorf("soap: faltan RUC, usuario SOL o clave SOL: %w", domain.ErrMisconfiguredProvider)
	}
	switch c.cfg.Environment {
	case EnvBeta, EnvProd, "":
	default:
		return fmt.Errorf("soap: entorno desconocido %q (usar beta|prod): %w", c.cfg.Environment, domain.ErrMisconfiguredProvider)
	}
	return nil
}

func (c *SOAPClient) endpoint() string {
	if c.cfg.Endpoint != "" {
		return c.cfg.Endpoint
	}
	if c.cfg.Environment == EnvProd {
		return billServiceURLProd
	}
	return billServiceURLBeta
}

// parseResponse desempaqueta la respuesta SOAP, decodifica el CDR y clasifica.
func (c *SOAPClient) parseResponse(rawBody []byte) (*SubmitResult, error) {
	var envResp soapResponseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		// Si no podemos parsear, devolvemos el raw como error reintentable.
		return &SubmitResult{
			Status:  SubmitError,
			Message: "no se pudo parsear respuesta SOAP: " + truncate(string(rawBody), 500),
		}, nil
	}

	if envResp.Body.Fault != nil {
		if r := classifyFault(envResp.Body.Fault); r != nil {
			return r, nil
		}
	}

	if envResp.Body.SendBillResponse == nil {
		return &SubmitResult{
			Status:  SubmitError,
			Message: "respuesta SOAP vacía o inesperada: " + truncate(string(rawBody), 500),
		}, nil
	}

	cdrZip, err := base64.StdEncoding.DecodeString(envResp.Body.SendBillResponse.ApplicationResponse)
	if err != nil {
		return &SubmitResult{
			Status:  SubmitError,
			Message: fmt.Sprintf("decodificar applicationResponse: %v", err),
		}, nil
	}

	info, err := ParseCDR(cdrZip)
	if err != nil {
		return &SubmitResult{
			Status:  SubmitError,
			Message: err.Error(),
		}, nil
	}

	result := &SubmitResult{
		Status:  ClassifyResponseCode(info.ResponseCode),
		Code:    info.ResponseCode,
		Message: info.Description,
	}
	if result.Status == SubmitAccepted || result.Status == SubmitRejected {
		result.Receipt = cdrZip
	}
	return result, nil
}

// faultCodeRe extrae el código numérico del faultcode SUNAT (ej: "soap-env:Client.2324").
var faultCodeRe = regexp.MustCompile(`(\d{4})`)

func classifyFault(fault *soapFault) *SubmitResult {
	msg := fmt.Sprintf("SOAP Fault [%s]: %s", fault.FaultCode, fault.FaultString)
	if m := faultCodeRe.FindString(fault.FaultCode); m != "" {
		return &SubmitResult{
			Status:  ClassifyResponseCode(m),
			Code:    m,
			Message: msg,
		}
	}
	return &SubmitResult{Status: SubmitError, Message: msg}
}

func parseFaultBody(rawBody []byte) *SubmitResult {
	var envResp soapResponseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil || envResp.Body.Fault == nil {
		return nil
	}
	return classifyFault(envResp.Body.Fault)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "…"
}
