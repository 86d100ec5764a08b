package sunat

import (
	"context"
	"fmt"

	"github.com/clinsalud/clinica-api/internal/domain"
)

// OfflineClient implementa Submitter cuando no hay proveedor configurado.
// No envía nada: devuelve PENDING con un mensaje descriptivo, de modo que el
// comprobante queda reintentable cuando se configure un proveedor real.
// Es el fallback deliberado de sandbox, no un error. El resultado es
// determinista: nunca simula aceptaciones ni rechazos aleatorios.
type OfflineClient struct{}

// NewOfflineClient crea el cliente offline.
func NewOfflineClient() *OfflineClient {
	return &OfflineClient{}
}

var _ Submitter = (*OfflineClient)(nil)

// Submit no realiza llamadas externas; clasifica siempre como PENDING.
func (c *OfflineClient) Submit(_ context.Context, doc *Document) (*SubmitResult, error) {
	if doc == nil || len(doc.SignedXML) == 0 {
		return nil, fmt.Errorf("offline: documento vacío: %w", domain.ErrInvalidInvoiceState)
	}
	_, zipName := Filenames(doc)
	return &SubmitResult{
		Status:  SubmitPending,
		Message: fmt.Sprintf("sin proveedor de envío configurado; %s queda pendiente de envío a SUNAT", zipName),
	}, nil
}
