package nfe

import (
	"errors"
	"testing"
	"time"

	"github.com/beevik/etree"
)

const testAccessKey = "41240112345678000199550010000001231000000016"

func testEvent(op Operation) *ManifestationEvent {
	return &ManifestationEvent{
		CNPJ:      "12345678000199",
		AccessKey: testAccessKey,
		IssuedAt:  time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC),
		UF:        "PR",
		Operation: op,
		Sequence:  1,
	}
}

func parseEvento(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("failed to parse XML: %v", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "evento" {
		t.Fatalf("root element is not <evento>: %s", xml)
	}
	return root
}

func TestSerializeEvent(t *testing.T) {
	source := DataSource{Location: time.FixedZone("BRT", -3*60*60)}
	serializer := NewXMLSerializer(source)

	xml, err := serializer.SerializeEvent(testEvent(OperationConfirmed), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	evento := parseEvento(t, xml)
	if got := evento.SelectAttrValue("xmlns", ""); got != Namespace {
		t.Errorf("xmlns = %q, want %q", got, Namespace)
	}
	if got := evento.SelectAttrValue("versao", ""); got != "1.00" {
		t.Errorf("versao = %q, want 1.00", got)
	}

	inf := evento.SelectElement("infEvento")
	if inf == nil {
		t.Fatal("missing infEvento")
	}
	if got, want := inf.SelectAttrValue("Id", ""), "ID210200"+testAccessKey+"01"; got != want {
		t.Errorf("Id = %q, want %q", got, want)
	}

	fields := map[string]string{
		"cOrgao":     "41",
		"tpAmb":      "2",
		"CNPJ":       "12345678000199",
		"chNFe":      testAccessKey,
		"dhEvento":   "2024-01-15T10:30:00-03:00",
		"tpEvento":   "210200",
		"nSeqEvento": "1",
		"verEvento":  "1.00",
	}
	for tag, want := range fields {
		el := inf.SelectElement(tag)
		if el == nil {
			t.Errorf("missing <%s>", tag)
			continue
		}
		if el.Text() != want {
			t.Errorf("<%s> = %q, want %q", tag, el.Text(), want)
		}
	}

	det := inf.SelectElement("detEvento")
	if det == nil {
		t.Fatal("missing detEvento")
	}
	if got := det.SelectElement("descEvento").Text(); got != "Confirmacao da Operacao" {
		t.Errorf("descEvento = %q", got)
	}
	if det.SelectElement("xJust") != nil {
		t.Error("xJust should only be present for operation 4")
	}
}

func TestSerializeEventEnvironment(t *testing.T) {
	serializer := NewXMLSerializer(DataSource{})

	tests := []struct {
		name        string
		homologacao bool
		want        string
	}{
		{"homologation", true, "2"},
		{"production", false, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml, err := serializer.SerializeEvent(testEvent(OperationAware), tt.homologacao)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			inf := parseEvento(t, xml).SelectElement("infEvento")
			if got := inf.SelectElement("tpAmb").Text(); got != tt.want {
				t.Errorf("tpAmb = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerializeEventJustification(t *testing.T) {
	serializer := NewXMLSerializer(DataSource{})

	tests := []struct {
		name      string
		operation Operation
		just      string
		wantJust  bool
	}{
		{"not realized with justification", OperationNotRealized, "Mercadoria recusada no recebimento", true},
		{"not realized without justification", OperationNotRealized, "", false},
		{"unknown ignores justification", OperationUnknown, "ignored", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := testEvent(tt.operation)
			event.Justification = tt.just

			xml, err := serializer.SerializeEvent(event, true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			det := parseEvento(t, xml).FindElement("./infEvento/detEvento")
			just := det.SelectElement("xJust")
			if tt.wantJust {
				if just == nil || just.Text() != tt.just {
					t.Errorf("xJust = %v, want %q", just, tt.just)
				}
			} else if just != nil {
				t.Errorf("unexpected xJust %q", just.Text())
			}
		})
	}
}

func TestSerializeEventErrors(t *testing.T) {
	serializer := NewXMLSerializer(DataSource{})

	unknownUF := testEvent(OperationConfirmed)
	unknownUF.UF = "ZZ"

	tests := []struct {
		name  string
		event *ManifestationEvent
	}{
		{"nil event", nil},
		{"invalid operation", testEvent(Operation(9))},
		{"unknown uf", unknownUF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serializer.SerializeEvent(tt.event, true)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var nfeErr *NfeError
			if !errors.As(err, &nfeErr) || nfeErr.Code() != ErrCodeSerialization {
				t.Errorf("expected serialization error, got %v", err)
			}
		})
	}
}
