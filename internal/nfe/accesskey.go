package nfe

// accesskey.go decomposes the 44 digit NF-e access key (chave de acesso).
// The manifestation handler forwards keys untouched; this is used by the CLI for diagnostics.

import (
	"fmt"
	"strconv"
)

const AccessKeyLength = 44

// AccessKey is a decomposed access key
type AccessKey struct {
	UFCode       string `json:"cUF"`
	YearMonth    string `json:"AAMM"`
	IssuerCNPJ   string `json:"CNPJ"`
	Model        string `json:"mod"`
	Series       string `json:"serie"`
	Number       string `json:"nNF"`
	EmissionType string `json:"tpEmis"`
	RandomCode   string `json:"cNF"`
	CheckDigit   int    `json:"cDV"`
}

// ParseAccessKey splits key into its fields and verifies the mod 11 check digit.
func ParseAccessKey(key string) (*AccessKey, error) {
	if len(key) != AccessKeyLength {
		return nil, NewValidationError(fmt.Sprintf("chave deve ter %d dígitos, recebido %d", AccessKeyLength, len(key)))
	}
	for i, c := range key {
		if c < '0' || c > '9' {
			return nil, NewValidationError(fmt.Sprintf("caractere inválido na posição %d da chave", i+1))
		}
	}

	dv, _ := strconv.Atoi(key[43:])
	expected := AccessKeyCheckDigit(key[:43])
	if dv != expected {
		return nil, NewValidationError(fmt.Sprintf("dígito verificador inválido: esperado %d, recebido %d", expected, dv))
	}

	return &AccessKey{
		UFCode:       key[0:2],
		YearMonth:    key[2:6],
		IssuerCNPJ:   key[6:20],
		Model:        key[20:22],
		Series:       key[22:25],
		Number:       key[25:34],
		EmissionType: key[34:35],
		RandomCode:   key[35:43],
		CheckDigit:   dv,
	}, nil
}

// AccessKeyCheckDigit computes the mod 11 check digit over the first 43 digits of a key.
// Weights cycle 2..9 from the rightmost digit; remainders 0 and 1 give 0.
func AccessKeyCheckDigit(digits string) int {
	sum, weight := 0, 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// UF returns the state abbreviation encoded in the key.
func (k *AccessKey) UF() string {
	uf, _ := UFFromCode(k.UFCode)
	return uf
}
