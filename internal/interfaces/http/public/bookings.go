package public

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/interfaces/http/common"
	publicapp "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/application"
	publicdomain "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

func (req *createBookingRequest) validate() error {
	req.MenuName = strings.TrimSpace(req.MenuName)
	if req.MenuName == "" {
		return errors.New("메뉴를 선택해 주세요")
	}
	if req.ReservedAt.IsZero() {
		return errors.New("예약 일시를 입력해 주세요")
	}
	if utf8.RuneCountInString(req.Memo) > common.MaxBookingMemoRunes {
		return errors.New("요청 사항은 500자 이내로 입력해 주세요")
	}
	return nil
}

func (h *Handler) bookingCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFrom(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusInternalServerError, "인증 정보를 가져오지 못했습니다")
			return
		}

		defer r.Body.Close()

		var req createBookingRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, common.MaxBookingRequestBody))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}
		if err := req.validate(); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		shopCode := strings.TrimSpace(chi.URLParam(r, "shopCode"))
		booking, err := h.bookingCommands.Book(ctx, publicapp.BookCommand{
			ShopCode:   shopCode,
			MenuName:   req.MenuName,
			ReservedAt: req.ReservedAt,
			Memo:       strings.TrimSpace(h.memoPolicy.Sanitize(req.Memo)),
			UserID:     user.ID,
		})
		switch {
		case err == nil:
		case errors.Is(err, publicdomain.ErrShopNotFound):
			common.WriteError(h.logger, w, http.StatusNotFound, "매장을 찾을 수 없습니다")
			return
		case errors.Is(err, publicdomain.ErrMenuNotFound):
			common.WriteError(h.logger, w, http.StatusUnprocessableEntity, "선택한 메뉴를 찾을 수 없습니다")
			return
		case errors.Is(err, publicapp.ErrInvalidBooking):
			common.WriteError(h.logger, w, http.StatusBadRequest, "예약 정보가 올바르지 않습니다")
			return
		default:
			h.logger.Error("booking create failed",
				zap.String("shopCode", shopCode),
				zap.String("userId", user.ID),
				zap.Error(err),
			)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "예약을 저장하지 못했습니다")
			return
		}

		if h.notifyAsync {
			go h.notifyBookingReceipt(context.Background(), user, *booking)
		} else {
			h.notifyBookingReceipt(context.Background(), user, *booking)
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, buildBooking(*booking, h.location))
	}
}
