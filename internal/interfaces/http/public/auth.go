package public

import (
	"net/http"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/interfaces/http/common"
)

func (h *Handler) authVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFrom(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusInternalServerError, "인증 정보를 가져오지 못했습니다")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"status": "ok",
			"user":   user,
		})
	}
}
