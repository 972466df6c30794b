package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/oneword-blog-backend/validation"
)

type wordHandler struct {
	responder Responder
	logger    zerolog.Logger
}

func newWordHandler() wordHandler {
	logger := log.With().Str("handlerName", "wordHandler").Logger()
	return wordHandler{responder: NewResponder(logger), logger: logger}
}

// validateWord runs the server's word rules so clients can give feedback
// before submitting.
// @Summary Validate a word
// @Tags Words
// @Produce json
// @Param word query string true "Word to check"
// @Success 200 {object} wordValidationResponse
// @Failure 400 {object} wordValidationResponse
// @Router /api/words/validate [get]
func (h wordHandler) validateWord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		word, err := validation.ValidateWord(r.URL.Query().Get("word"))
		if err != nil {
			var vErr *validation.Error
			reason := ""
			if errors.As(err, &vErr) {
				reason = string(vErr.Reason)
			}
			h.responder.writeJSON(w, http.StatusBadRequest, wordValidationResponse{
				Valid:   false,
				Message: err.Error(),
				Reason:  reason,
			})
			return
		}

		h.responder.WriteJSON(w, wordValidationResponse{Valid: true, Word: word})
	}
}
