package sunat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinsalud/clinica-api/internal/domain"
)

// ── Implementación REST (proveedor OSE) ──────────────────────────────────────

// RESTConfig credenciales del proveedor OSE (Operador de Servicios Electrónicos).
type RESTConfig struct {
	Endpoint string // URL del API del OSE (obligatoria)
	Token    string // token de autenticación del OSE
}

// RESTClient implementa Submitter contra un OSE con API JSON.
// El OSE valida y reenvía a SUNAT; su respuesta ya viene clasificada.
type RESTClient struct {
	cfg        RESTConfig
	httpClient *http.Client
}

// NewRESTClient construye el cliente REST del OSE.
func NewRESTClient(cfg RESTConfig) *RESTClient {
	return &RESTClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ Submitter = (*RESTClient)(nil)

// oseRequest cuerpo JSON del envío al OSE.
type oseRequest struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"` // XML firmado en Base64
}

// oseResponse respuesta JSON del OSE.
type oseResponse struct {
	Accepted    bool   `json:"accepted"`
	Code        string `json:"code"`
	Description string `json:"description"`
	CDR         string `json:"cdr,omitempty"` // ZIP del CDR en Base64
}

// Submit envía el XML firmado al OSE y normaliza la respuesta JSON.
func (c *RESTClient) Submit(ctx context.Context, doc *Document) (*SubmitResult, error) {
	if c.cfg.Endpoint == "" || c.cfg.Token == "" {
		return nil, fmt.Errorf("ose: faltan endpoint o token: %w", domain.ErrMisconfiguredProvider)
	}
	if doc == nil || len(doc.SignedXML) == 0 {
		return nil, fmt.Errorf("ose: documento vacío: %w", domain.ErrInvalidInvoiceState)
	}

	xmlName, _ := Filenames(doc)
	body, err := json.Marshal(oseRequest{
		FileName: xmlName,
		Content:  base64.StdEncoding.EncodeToString(doc.SignedXML),
	})
	if err != nil {
		return nil, fmt.Errorf("ose: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ose: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &SubmitResult{
			Status:  SubmitError,
			Message: fmt.Sprintf("llamada al OSE falló: %v", err),
		}, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &SubmitResult{
			Status:  SubmitError,
			Message: fmt.Sprintf("leer respuesta del OSE: %v", err),
		}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SubmitResult{
			Status:  SubmitError,
			Message: fmt.Sprintf("OSE respondió HTTP %d: %s", resp.StatusCode, truncate(string(raw), 300)),
		}, nil
	}

	var out oseResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return &SubmitResult{
			Status:  SubmitError,
			Message: "respuesta del OSE no es JSON válido: " + truncate(string(raw), 300),
		}, nil
	}

	result := &SubmitResult{
		Code:    out.Code,
		Message: out.Description,
	}
	if out.Accepted {
		result.Status = SubmitAccepted
	} else {
		result.Status = SubmitRejected
	}
	if out.CDR != "" {
		if cdr, err := base64.StdEncoding.DecodeString(out.CDR); err == nil {
			result.Receipt = cdr
		}
	}
	return result, nil
}
