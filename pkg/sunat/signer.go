package sunat

import "crypto/tls"

// Signer define el puerto de firma digital del XML UBL.
// La implementación concreta (XAdES) vive en internal/infrastructure/sunat/signer.
type Signer interface {
	// Sign firma el XML y devuelve el documento con <ds:Signature> inyectado
	// en el placeholder ext:ExtensionContent.
	Sign(xmlBytes []byte, cert tls.Certificate) ([]byte, error)
}
