package nfe

// endpoints.go maps states to the NFeRecepcaoEvento4 web service of their authoriser.

import (
	"fmt"
	"strings"
)

// Authoriser identifies the SEFAZ (own or virtual) that serves a state.
type Authoriser string

const (
	AuthoriserAM   Authoriser = "AM"
	AuthoriserBA   Authoriser = "BA"
	AuthoriserCE   Authoriser = "CE"
	AuthoriserGO   Authoriser = "GO"
	AuthoriserMG   Authoriser = "MG"
	AuthoriserMS   Authoriser = "MS"
	AuthoriserMT   Authoriser = "MT"
	AuthoriserPE   Authoriser = "PE"
	AuthoriserPR   Authoriser = "PR"
	AuthoriserRS   Authoriser = "RS"
	AuthoriserSP   Authoriser = "SP"
	AuthoriserSVAN Authoriser = "SVAN"
	AuthoriserSVRS Authoriser = "SVRS"
	AuthoriserAN   Authoriser = "AN"
)

type eventEndpoint struct {
	production   string
	homologation string
}

var eventEndpoints = map[Authoriser]eventEndpoint{
	AuthoriserAM: {
		production:   "https://nfe.sefaz.am.gov.br/services2/services/RecepcaoEvento4",
		homologation: "https://homnfe.sefaz.am.gov.br/services2/services/RecepcaoEvento4",
	},
	AuthoriserBA: {
		production:   "https://nfe.sefaz.ba.gov.br/webservices/NFeRecepcaoEvento4/NFeRecepcaoEvento4.asmx",
		homologation: "https://hnfe.sefaz.ba.gov.br/webservices/NFeRecepcaoEvento4/NFeRecepcaoEvento4.asmx",
	},
	AuthoriserCE: {
		production:   "https://nfe.sefaz.ce.gov.br/nfe4/services/NFeRecepcaoEvento4",
		homologation: "https://nfeh.sefaz.ce.gov.br/nfe4/services/NFeRecepcaoEvento4",
	},
	AuthoriserGO: {
		production:   "https://nfe.sefaz.go.gov.br/nfe/services/NFeRecepcaoEvento4",
		homologation: "https://homolog.sefaz.go.gov.br/nfe/services/NFeRecepcaoEvento4",
	},
	AuthoriserMG: {
		production:   "https://nfe.fazenda.mg.gov.br/nfe2/services/NFeRecepcaoEvento4",
		homologation: "https://hnfe.fazenda.mg.gov.br/nfe2/services/NFeRecepcaoEvento4",
	},
	AuthoriserMS: {
		production:   "https://nfe.sefaz.ms.gov.br/ws/NFeRecepcaoEvento4",
		homologation: "https://hom.nfe.sefaz.ms.gov.br/ws/NFeRecepcaoEvento4",
	},
	AuthoriserMT: {
		production:   "https://nfe.sefaz.mt.gov.br/nfews/v2/services/RecepcaoEvento4",
		homologation: "https://homologacao.sefaz.mt.gov.br/nfews/v2/services/RecepcaoEvento4",
	},
	AuthoriserPE: {
		production:   "https://nfe.sefaz.pe.gov.br/nfe-service/services/NFeRecepcaoEvento4",
		homologation: "https://nfehomolog.sefaz.pe.gov.br/nfe-service/services/NFeRecepcaoEvento4",
	},
	AuthoriserPR: {
		production:   "https://nfe.sefa.pr.gov.br/nfe/NFeRecepcaoEvento4",
		homologation: "https://homologacao.nfe.sefa.pr.gov.br/nfe/NFeRecepcaoEvento4",
	},
	AuthoriserRS: {
		production:   "https://nfe.sefazrs.rs.gov.br/ws/recepcaoevento/recepcaoevento4.asmx",
		homologation: "https://nfe-homologacao.sefazrs.rs.gov.br/ws/recepcaoevento/recepcaoevento4.asmx",
	},
	AuthoriserSP: {
		production:   "https://nfe.fazenda.sp.gov.br/ws/nferecepcaoevento4.asmx",
		homologation: "https://homologacao.nfe.fazenda.sp.gov.br/ws/nferecepcaoevento4.asmx",
	},
	AuthoriserSVAN: {
		production:   "https://www.sefazvirtual.fazenda.gov.br/NFeRecepcaoEvento4/NFeRecepcaoEvento4.asmx",
		homologation: "https://hom.sefazvirtual.fazenda.gov.br/NFeRecepcaoEvento4/NFeRecepcaoEvento4.asmx",
	},
	AuthoriserSVRS: {
		production:   "https://nfe.svrs.rs.gov.br/ws/recepcaoevento/recepcaoevento4.asmx",
		homologation: "https://nfe-homologacao.svrs.rs.gov.br/ws/recepcaoevento/recepcaoevento4.asmx",
	},
	AuthoriserAN: {
		production:   "https://www.nfe.fazenda.gov.br/NFeRecepcaoEvento4/NFeRecepcaoEvento4.asmx",
		homologation: "https://hom1.nfe.fazenda.gov.br/NFeRecepcaoEvento4/NFeRecepcaoEvento4.asmx",
	},
}

// states without their own authoriser
var virtualAuthorisers = map[string]Authoriser{
	"MA": AuthoriserSVAN,
	"PA": AuthoriserSVAN,
	"AC": AuthoriserSVRS, "AL": AuthoriserSVRS, "AP": AuthoriserSVRS, "DF": AuthoriserSVRS,
	"ES": AuthoriserSVRS, "PB": AuthoriserSVRS, "PI": AuthoriserSVRS, "RJ": AuthoriserSVRS,
	"RN": AuthoriserSVRS, "RO": AuthoriserSVRS, "RR": AuthoriserSVRS, "SC": AuthoriserSVRS,
	"SE": AuthoriserSVRS, "TO": AuthoriserSVRS,
}

// AuthoriserFor returns the authoriser that handles events for uf.
func AuthoriserFor(uf string) (Authoriser, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if a, ok := virtualAuthorisers[uf]; ok {
		return a, nil
	}
	if _, ok := eventEndpoints[Authoriser(uf)]; ok {
		return Authoriser(uf), nil
	}
	return "", NewValidationError(fmt.Sprintf("UF sem web service de eventos: %q", uf))
}

// EventEndpoint returns the NFeRecepcaoEvento4 URL for uf in the chosen environment.
func EventEndpoint(uf string, homologacao bool) (string, error) {
	a, err := AuthoriserFor(uf)
	if err != nil {
		return "", err
	}
	ep := eventEndpoints[a]
	if homologacao {
		return ep.homologation, nil
	}
	return ep.production, nil
}
