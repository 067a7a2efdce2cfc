package nfe

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DataSource carries the settings the serializer needs that do not come from the request.
// It is built once from configuration and passed explicitly to NewXMLSerializer.
type DataSource struct {
	// Location is used to render dhEvento with the local UTC offset
	Location *time.Location

	// EventVersion is written to versao/verEvento (default 1.00)
	EventVersion string
}

const DefaultTimezone = "America/Sao_Paulo"

// NewDataSource loads the named timezone. An empty name uses DefaultTimezone.
func NewDataSource(timezone string) (DataSource, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return DataSource{}, WrapValidationError(err, fmt.Sprintf("timezone inválido %q", timezone))
	}
	return DataSource{Location: loc, EventVersion: EventSchemaVersion}, nil
}

func (d DataSource) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

func (d DataSource) eventVersion() string {
	if d.EventVersion == "" {
		return EventSchemaVersion
	}
	return d.EventVersion
}
