package nfe

// event.go defines the recipient manifestation event ("manifestação do destinatário").

import (
	"fmt"
	"time"
)

// Operation is the disposition the recipient declares towards an invoice.
type Operation int

const (
	// OperationConfirmed confirms the operation took place and the goods were received.
	OperationConfirmed Operation = 1

	// OperationAware declares the recipient is aware of the invoice (ciência da emissão)
	// but does not yet have enough information for a conclusive manifestation.
	OperationAware Operation = 2

	// OperationUnknown declares the recipient does not recognise the operation.
	OperationUnknown Operation = 3

	// OperationNotRealized declares the operation did not take place
	// (e.g. the goods were refused). Accepts a justification.
	OperationNotRealized Operation = 4
)

// SEFAZ event type codes (tpEvento) for the manifestation events
const (
	EventTypeConfirmation = "210200"
	EventTypeAwareness    = "210210"
	EventTypeUnknown      = "210220"
	EventTypeNotRealized  = "210240"
	defaultEventSequence  = 1
)

var operationEventTypes = map[Operation]string{
	OperationConfirmed:   EventTypeConfirmation,
	OperationAware:       EventTypeAwareness,
	OperationUnknown:     EventTypeUnknown,
	OperationNotRealized: EventTypeNotRealized,
}

// descEvento values must match the schema enumeration exactly (no accents)
var operationDescriptions = map[Operation]string{
	OperationConfirmed:   "Confirmacao da Operacao",
	OperationAware:       "Ciencia da Operacao",
	OperationUnknown:     "Desconhecimento da Operacao",
	OperationNotRealized: "Operacao nao Realizada",
}

// Valid reports whether o is one of the four manifestation operations.
func (o Operation) Valid() bool {
	_, ok := operationEventTypes[o]
	return ok
}

// EventType returns the tpEvento code, or "" for an invalid operation.
func (o Operation) EventType() string {
	return operationEventTypes[o]
}

// Description returns the descEvento text, or "" for an invalid operation.
func (o Operation) Description() string {
	return operationDescriptions[o]
}

func (o Operation) String() string {
	switch o {
	case OperationConfirmed:
		return "confirmed"
	case OperationAware:
		return "aware"
	case OperationUnknown:
		return "unknown"
	case OperationNotRealized:
		return "not-realized"
	default:
		return fmt.Sprintf("invalid(%d)", int(o))
	}
}

// ManifestationEvent is the event sent to SEFAZ. It only lives for the duration of one request.
type ManifestationEvent struct {
	CNPJ          string
	AccessKey     string
	IssuedAt      time.Time
	UF            string
	Operation     Operation
	Justification string
	Sequence      int
}

// ManifestationInput holds the caller-supplied fields used to build an event.
type ManifestationInput struct {
	CNPJ          string
	AccessKey     string
	UF            string
	Operation     Operation
	Justification string
}

// NewManifestationEvent builds the event for the input, stamping it with now.
//
// The operation is the only field validated here: everything else is passed through
// to SEFAZ as supplied.
func NewManifestationEvent(in ManifestationInput, now time.Time) (*ManifestationEvent, error) {
	if !in.Operation.Valid() {
		return nil, NewValidationError(fmt.Sprintf("operação inválida: %d (esperado 1, 2, 3 ou 4)", int(in.Operation)))
	}

	return &ManifestationEvent{
		CNPJ:          in.CNPJ,
		AccessKey:     in.AccessKey,
		IssuedAt:      now,
		UF:            in.UF,
		Operation:     in.Operation,
		Justification: in.Justification,
		Sequence:      defaultEventSequence,
	}, nil
}

// ID returns the infEvento Id attribute: "ID" + tpEvento + chave + nSeqEvento (2 digits).
func (e *ManifestationEvent) ID() string {
	return fmt.Sprintf("ID%s%s%02d", e.Operation.EventType(), e.AccessKey, e.Sequence)
}
