package nfe

import (
	"fmt"
	"strings"
)

// UFNacional is the pseudo-state used for events registered with the Ambiente Nacional.
const UFNacional = "AN"

// ufCodes are the IBGE codes used for cOrgao and the first two digits of access keys
var ufCodes = map[string]string{
	"RO": "11", "AC": "12", "AM": "13", "RR": "14", "PA": "15", "AP": "16", "TO": "17",
	"MA": "21", "PI": "22", "CE": "23", "RN": "24", "PB": "25", "PE": "26", "AL": "27",
	"SE": "28", "BA": "29", "MG": "31", "ES": "32", "RJ": "33", "SP": "35", "PR": "41",
	"SC": "42", "RS": "43", "MS": "50", "MT": "51", "GO": "52", "DF": "53",
	UFNacional: "91",
}

// UFCode returns the IBGE code for a state abbreviation (case insensitive).
func UFCode(uf string) (string, error) {
	code, ok := ufCodes[strings.ToUpper(strings.TrimSpace(uf))]
	if !ok {
		return "", NewValidationError(fmt.Sprintf("UF desconhecida: %q", uf))
	}
	return code, nil
}

// UFFromCode is the reverse of UFCode.
func UFFromCode(code string) (string, bool) {
	for uf, c := range ufCodes {
		if c == code {
			return uf, true
		}
	}
	return "", false
}
