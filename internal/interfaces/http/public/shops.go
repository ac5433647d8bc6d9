package public

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	disc "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/interfaces/http/common"
	publicapp "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/application"
	publicdomain "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

func (h *Handler) shopListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		pageIndex, _ := common.ParseNonNegativeInt(query.Get("pageIndex"), 0)
		limit, _ := common.ParsePositiveInt(query.Get("limit"), publicapp.DefaultPageLimit)
		limit = min(limit, publicapp.MaxPageLimit)

		filter := publicapp.ShopFilter{
			CategoryCode: strings.TrimSpace(query.Get("categoryCode")),
			Keyword:      query.Get("keyword"),
		}
		lat, latOK := common.ParseCoordinate(query.Get("latitude"), 90)
		lng, lngOK := common.ParseCoordinate(query.Get("longitude"), 180)
		if latOK && lngOK {
			filter.Origin = &publicapp.Point{Latitude: lat, Longitude: lng}
		}

		shops, err := h.shopQueries.List(ctx, filter, publicapp.Paging{Page: pageIndex, Limit: limit})
		if err != nil {
			h.logger.Error("shop list fetch failed", zap.Int("pageIndex", pageIndex), zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, "매장 목록을 불러오지 못했습니다")
			return
		}

		items := make([]disc.ShopSummary, 0, len(shops))
		for _, shop := range shops {
			items = append(items, buildShopSummary(shop))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, shopListResponse{
			Items:     items,
			PageIndex: pageIndex,
			Limit:     limit,
		})
	}
}

func (h *Handler) shopDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		shopCode := strings.TrimSpace(chi.URLParam(r, "shopCode"))
		if shopCode == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "매장 코드가 지정되지 않았습니다")
			return
		}

		shop, err := h.shopQueries.Detail(ctx, shopCode)
		if err != nil {
			if errors.Is(err, publicdomain.ErrShopNotFound) {
				common.WriteError(h.logger, w, http.StatusNotFound, "매장을 찾을 수 없습니다")
				return
			}
			h.logger.Error("shop detail fetch failed", zap.String("shopCode", shopCode), zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, "매장 정보를 불러오지 못했습니다")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildShopDetail(*shop))
	}
}

func (h *Handler) categoryListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		categories, err := h.categoryQueries.List(ctx)
		if err != nil {
			h.logger.Error("category list fetch failed", zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, "카테고리를 불러오지 못했습니다")
			return
		}

		items := make([]categoryResponse, 0, len(categories))
		for _, category := range categories {
			items = append(items, buildCategory(category))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, items)
	}
}
