package nfe

// soap.go wraps signed events in the envEvento batch and the SOAP 1.2 envelope expected
// by NFeRecepcaoEvento4, and reads the fields of interest back out of the response.

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const (
	soapNamespace         = "http://www.w3.org/2003/05/soap-envelope"
	eventServiceNamespace = "http://www.portalfiscal.inf.br/nfe/wsdl/NFeRecepcaoEvento4"
	eventServiceAction    = eventServiceNamespace + "/nfeRecepcaoEvento"
)

// BuildEventEnvelope returns the SOAP request carrying signedEvento in an envEvento batch.
func BuildEventEnvelope(batchID, signedEvento string) (string, error) {
	evento := etree.NewDocument()
	if err := evento.ReadFromString(signedEvento); err != nil {
		return "", WrapSerializationError(err, "XML assinado malformado")
	}
	root := evento.Root()
	if root == nil || root.Tag != "evento" {
		return "", NewSerializationError("elemento raiz <evento> não encontrado no XML assinado")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("soap12:Envelope")
	env.CreateAttr("xmlns:soap12", soapNamespace)
	body := env.CreateElement("soap12:Body")

	msg := body.CreateElement("nfeDadosMsg")
	msg.CreateAttr("xmlns", eventServiceNamespace)

	batch := msg.CreateElement("envEvento")
	batch.CreateAttr("xmlns", Namespace)
	batch.CreateAttr("versao", EventSchemaVersion)
	batch.CreateElement("idLote").SetText(batchID)
	batch.AddChild(root)

	out, err := doc.WriteToString()
	if err != nil {
		return "", WrapSerializationError(err, "falha ao gerar envelope SOAP")
	}
	return out, nil
}

// EventReceipt is one retEvento/infEvento entry of the response.
type EventReceipt struct {
	Status       string
	Reason       string
	AccessKey    string
	EventType    string
	Protocol     string
	RegisteredAt string
}

// EventResult is the parsed retEnvEvento.
type EventResult struct {
	BatchStatus string
	BatchReason string
	Events      []EventReceipt
}

// Registered status codes for events (135: registered and linked, 136: registered, not linked)
const (
	StatusBatchProcessed   = "128"
	StatusEventRegistered  = "135"
	StatusEventUnlinked    = "136"
	StatusDuplicateEvent   = "573"
	StatusEventNotFoundNFe = "217"
)

// Accepted reports whether every event in the batch was registered by SEFAZ.
func (r *EventResult) Accepted() bool {
	if r.BatchStatus != StatusBatchProcessed || len(r.Events) == 0 {
		return false
	}
	for _, e := range r.Events {
		if e.Status != StatusEventRegistered && e.Status != StatusEventUnlinked {
			return false
		}
	}
	return true
}

// ParseEventResponse extracts retEnvEvento from a raw SOAP response.
func ParseEventResponse(raw string) (*EventResult, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, WrapTransportError(err, "resposta da SEFAZ não é um XML válido")
	}

	ret := doc.FindElement("//retEnvEvento")
	if ret == nil {
		return nil, NewTransportError("resposta da SEFAZ sem <retEnvEvento>")
	}

	result := &EventResult{
		BatchStatus: childText(ret, "cStat"),
		BatchReason: childText(ret, "xMotivo"),
	}
	for _, ev := range ret.SelectElements("retEvento") {
		inf := ev.SelectElement("infEvento")
		if inf == nil {
			continue
		}
		result.Events = append(result.Events, EventReceipt{
			Status:       childText(inf, "cStat"),
			Reason:       childText(inf, "xMotivo"),
			AccessKey:    childText(inf, "chNFe"),
			EventType:    childText(inf, "tpEvento"),
			Protocol:     childText(inf, "nProt"),
			RegisteredAt: childText(inf, "dhRegEvento"),
		})
	}
	return result, nil
}

// soapFault returns an error when raw is a SOAP fault (1.1 or 1.2), nil otherwise.
// Responses that are not XML are left to the caller.
func soapFault(raw string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil
	}
	fault := doc.FindElement("//Fault")
	if fault == nil {
		return nil
	}

	reason := ""
	if el := fault.FindElement("./Reason/Text"); el != nil {
		reason = el.Text()
	} else if el := fault.FindElement("./faultstring"); el != nil {
		reason = el.Text()
	}
	if reason == "" {
		reason = "sem descrição"
	}
	return NewAuthorityError(fmt.Sprintf("SOAP fault: %s", strings.TrimSpace(reason)))
}

func childText(el *etree.Element, tag string) string {
	c := el.SelectElement(tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}
