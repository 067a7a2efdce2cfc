package manifestacao

// types.go defines the POST /manifestacoes request and response bodies.

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

// ManifestationRequest is the JSON body of POST /manifestacoes.
type ManifestationRequest struct {
	// Certificado is the path to the A1 (PKCS#12 .pfx) certificate of the recipient
	Certificado string `json:"certificado" example:"/certs/empresa.pfx"`

	// Senha is the certificate password. Never logged.
	Senha string `json:"senha" example:"secret"`

	// UF is the state the event is sent to ("AN" for Ambiente Nacional)
	UF string `json:"uf" example:"PR"`

	// Homologacao selects the homologation (test) environment instead of production
	Homologacao bool `json:"homologacao" example:"true"`

	// CNPJ of the recipient (14 digits)
	CNPJ string `json:"cnpj" example:"12345678000199"`

	// Chave is the 44-digit access key of the NF-e
	Chave string `json:"chave" example:"41240112345678000199550010000001231000000016"`

	// Operacao is 1 (confirmação), 2 (ciência), 3 (desconhecimento) or 4 (operação não realizada)
	Operacao int `json:"operacao" example:"1" enums:"1,2,3,4"`

	// Justificativa is sent as xJust for operation 4. Optional.
	Justificativa string `json:"justificativa,omitempty" example:"Mercadoria devolvida"`
}

// requiredRequestFields must be present and non-null in every request body
var requiredRequestFields = []string{"certificado", "senha", "uf", "homologacao", "cnpj", "chave", "operacao"}

// UnmarshalJSON rejects bodies that omit a required field (or set it to null),
// so a partial request never reaches the pipeline with zero values.
func (r *ManifestationRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var missing []string
	for _, name := range requiredRequestFields {
		if v, ok := fields[name]; !ok || string(v) == "null" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("campos obrigatórios ausentes: %s", strings.Join(missing, ", "))
	}

	type plain ManifestationRequest
	return json.Unmarshal(data, (*plain)(r))
}

// Input converts the request to the fields used to build the event.
func (r *ManifestationRequest) Input() nfe.ManifestationInput {
	return nfe.ManifestationInput{
		CNPJ:          r.CNPJ,
		AccessKey:     r.Chave,
		UF:            r.UF,
		Operation:     nfe.Operation(r.Operacao),
		Justification: r.Justificativa,
	}
}

// StatusSuccess is the status field of every successful response
const StatusSuccess = "success"

// ManifestationResponse is returned with 200 OK.
type ManifestationResponse struct {
	Status string `json:"status" example:"success"`

	// Xmls holds the raw SEFAZ response, as a single element
	Xmls []string `json:"xmls"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail" example:"Erro ao buscar manifestações: certificado inválido ou senha incorreta"`
}
