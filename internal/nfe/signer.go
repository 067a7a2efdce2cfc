package nfe

// signer.go applies the XMLDSig enveloped signature required on NF-e events.
//
// The signature covers infEvento (referenced by its Id attribute) and is placed as the
// sibling that follows it inside <evento>. Algorithms are fixed by the NF-e manual:
// C14N 1.0, RSA-SHA1, SHA1 digest, no namespace prefix.

import (
	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
)

// A1Signer signs event XML with an A1 certificate.
type A1Signer struct {
	cert *A1Certificate
}

// NewA1Signer creates a signer for cert.
func NewA1Signer(cert *A1Certificate) (*A1Signer, error) {
	if cert == nil {
		return nil, NewCertificateError("certificado não carregado")
	}
	return &A1Signer{cert: cert}, nil
}

// Sign returns xml with a <Signature> appended to <evento>.
func (s *A1Signer) Sign(xml string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return "", WrapSigningError(err, "XML do evento malformado")
	}

	evento := doc.Root()
	if evento == nil || evento.Tag != "evento" {
		return "", NewSigningError("elemento raiz <evento> não encontrado")
	}
	inf := evento.SelectElement("infEvento")
	if inf == nil {
		return "", NewSigningError("elemento <infEvento> não encontrado")
	}
	if inf.SelectAttrValue("Id", "") == "" {
		return "", NewSigningError("atributo Id ausente em <infEvento>")
	}

	ctx := dsig.NewDefaultSigningContext(s.cert)
	ctx.Prefix = ""
	ctx.IdAttribute = "Id"
	ctx.Canonicalizer = dsig.MakeC14N10RecCanonicalizer()
	if err := ctx.SetSignatureMethod(dsig.RSASHA1SignatureMethod); err != nil {
		return "", WrapSigningError(err, "algoritmo de assinatura não suportado")
	}

	// infEvento stays attached so the namespace inherited from <evento> is part of the digest
	signature, err := ctx.ConstructSignature(inf, true)
	if err != nil {
		return "", WrapSigningError(err, "falha ao assinar evento")
	}
	evento.AddChild(signature)

	out, err := doc.WriteToString()
	if err != nil {
		return "", WrapSigningError(err, "falha ao gerar XML assinado")
	}
	return out, nil
}
