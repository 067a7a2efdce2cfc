package handlers

// manifestacoes.go implements the POST /manifestacoes endpoint.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fiscal-integrations/manifestacao/internal/manifestacao"
)

// Manifester runs the manifestation pipeline.
type Manifester interface {
	Manifest(ctx context.Context, req *manifestacao.ManifestationRequest) (string, error)
}

// ManifestationHandler handles POST /manifestacoes requests
type ManifestationHandler struct {
	service Manifester
}

// NewManifestationHandler creates a handler backed by service
func NewManifestationHandler(service Manifester) *ManifestationHandler {
	return &ManifestationHandler{service: service}
}

// HandleManifestation godoc
//
//	@Summary		Register a recipient manifestation
//	@Description	Builds a manifestação do destinatário event for the NF-e, signs it with the
//	@Description	supplied A1 certificate and sends it to the SEFAZ event service of the given state.
//	@Description
//	@Description	`operacao`: 1 confirmação da operação, 2 ciência da operação,
//	@Description	3 desconhecimento da operação, 4 operação não realizada.
//	@Description
//	@Description	The SEFAZ response is returned as received. Business rejections (e.g. cStat 573)
//	@Description	are part of a successful response: check cStat in the returned XML.
//	@Tags			Manifestação
//	@Accept			json
//	@Produce		json
//	@Param			request	body		manifestacao.ManifestationRequest	true	"Manifestation request"
//	@Success		200		{object}	manifestacao.ManifestationResponse	"SEFAZ response"
//	@Failure		422		{object}	manifestacao.ErrorResponse			"Malformed body or missing required field"
//	@Failure		500		{object}	manifestacao.ErrorResponse			"Serialization, signing or transmission failed"
//	@Router			/manifestacoes [post]
func (h *ManifestationHandler) HandleManifestation(w http.ResponseWriter, r *http.Request) {
	var req manifestacao.ManifestationRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			manifestacao.RespondWithError(w, r, manifestacao.NewRequestTooLargeError(
				fmt.Sprintf("corpo da requisição excede o tamanho máximo permitido (%d bytes)", maxBytesErr.Limit)))
			return
		}
		manifestacao.RespondWithError(w, r, manifestacao.WrapMalformedRequestError(err, "corpo da requisição inválido"))
		return
	}

	raw, err := h.service.Manifest(r.Context(), &req)
	if err != nil {
		manifestacao.RespondWithError(w, r, err)
		return
	}

	manifestacao.RespondWithJSON(w, http.StatusOK, manifestacao.ManifestationResponse{
		Status: manifestacao.StatusSuccess,
		Xmls:   []string{raw},
	})
}
