package billing

import (
	"context"

	"github.com/clinsalud/clinica-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los repos
// que participan en la emisión de un comprobante. Asignar el correlativo y
// persistir el comprobante en la misma transacción garantiza que un INSERT
// fallido revierta también el contador: la serie nunca queda con huecos.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		seq repository.SequenceAllocator,
		invoiceRepo repository.InvoiceRepository,
		admissionRepo repository.AdmissionRepository,
	) error) error
}

// CertConfig rutas del certificado de firma digital del emisor.
// CertPath vacío desactiva la firma (modo sandbox/offline).
type CertConfig struct {
	CertPath    string // .p12/.pfx o .pem
	CertKeyPath string // llave privada .pem (si CertPath es solo el certificado)
	CertPass    string // contraseña del .p12
}
