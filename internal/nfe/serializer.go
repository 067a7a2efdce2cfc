package nfe

// serializer.go renders a ManifestationEvent as the <evento> element of the
// NF-e event schema (leiauteEvento v1.00).

import (
	"strconv"

	"github.com/beevik/etree"
)

// Namespace is the portal fiscal namespace shared by all NF-e schemas
const Namespace = "http://www.portalfiscal.inf.br/nfe"

const (
	EventSchemaVersion = "1.00"
	dhEventoLayout     = "2006-01-02T15:04:05-07:00"
)

// Environment (tpAmb) values
const (
	EnvironmentProduction   = "1"
	EnvironmentHomologation = "2"
)

// EnvironmentCode returns the tpAmb value for the homologation flag.
func EnvironmentCode(homologacao bool) string {
	if homologacao {
		return EnvironmentHomologation
	}
	return EnvironmentProduction
}

// XMLSerializer renders manifestation events.
type XMLSerializer struct {
	source DataSource
}

// NewXMLSerializer creates a serializer that reads timezone and schema settings from source.
func NewXMLSerializer(source DataSource) *XMLSerializer {
	return &XMLSerializer{source: source}
}

// SerializeEvent returns the unsigned <evento> XML for the event.
//
// Only operation 4 carries a justification (xJust), and only when one was supplied.
func (s *XMLSerializer) SerializeEvent(event *ManifestationEvent, homologacao bool) (string, error) {
	if event == nil {
		return "", NewSerializationError("evento ausente")
	}
	if !event.Operation.Valid() {
		return "", NewSerializationError("operação inválida: " + strconv.Itoa(int(event.Operation)))
	}

	orgao, err := UFCode(event.UF)
	if err != nil {
		return "", WrapSerializationError(err, "não foi possível determinar o órgão")
	}

	version := s.source.eventVersion()

	doc := etree.NewDocument()
	evento := doc.CreateElement("evento")
	evento.CreateAttr("xmlns", Namespace)
	evento.CreateAttr("versao", version)

	inf := evento.CreateElement("infEvento")
	inf.CreateAttr("Id", event.ID())
	inf.CreateElement("cOrgao").SetText(orgao)
	inf.CreateElement("tpAmb").SetText(EnvironmentCode(homologacao))
	inf.CreateElement("CNPJ").SetText(event.CNPJ)
	inf.CreateElement("chNFe").SetText(event.AccessKey)
	inf.CreateElement("dhEvento").SetText(event.IssuedAt.In(s.source.location()).Format(dhEventoLayout))
	inf.CreateElement("tpEvento").SetText(event.Operation.EventType())
	inf.CreateElement("nSeqEvento").SetText(strconv.Itoa(event.Sequence))
	inf.CreateElement("verEvento").SetText(version)

	det := inf.CreateElement("detEvento")
	det.CreateAttr("versao", version)
	det.CreateElement("descEvento").SetText(event.Operation.Description())
	if event.Operation == OperationNotRealized && event.Justification != "" {
		det.CreateElement("xJust").SetText(event.Justification)
	}

	out, err := doc.WriteToString()
	if err != nil {
		return "", WrapSerializationError(err, "falha ao gerar XML do evento")
	}
	return out, nil
}
