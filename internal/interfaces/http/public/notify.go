package public

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/interfaces/http/common"
	publicdomain "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

const adminNotificationTarget = "admin_booking_notification"

func (h *Handler) notifyBookingReceipt(ctx context.Context, user common.User, booking publicdomain.Booking) {
	if ctx == nil {
		ctx = context.Background()
	}

	if userID := strings.TrimSpace(user.ID); userID != "" && h.messengerDestination != "" {
		message := buildReceiptMessage(booking, h.location)
		if err := h.sendMessengerMessage(ctx, h.messengerDestination, userID, message); err != nil {
			h.logger.Warn("booking receipt delivery failed", zap.String("bookingId", booking.ID), zap.Error(err))
		}
	}

	h.notifyAdminChannels(ctx, user, booking)
}

func buildReceiptMessage(booking publicdomain.Booking, loc *time.Location) string {
	var builder strings.Builder
	builder.WriteString("예약이 접수되었습니다!\n")
	fmt.Fprintf(&builder, "**매장**\n> %s\n", booking.ShopName)
	fmt.Fprintf(&builder, "**메뉴**\n> %s\n", booking.MenuName)
	fmt.Fprintf(&builder, "**일시**\n> %s\n", formatReservedAt(booking.ReservedAt, loc))
	if memo := strings.TrimSpace(booking.Memo); memo != "" {
		fmt.Fprintf(&builder, "**요청 사항**\n> %s\n", memo)
	}
	return builder.String()
}

func buildDiscordBookingMessage(adminBaseURL string, user common.User, booking publicdomain.Booking, loc *time.Location) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "**%s** 님의 새 예약이 있습니다.\n", user.DisplayName())
	fmt.Fprintf(&builder, "- 매장: %s (%s)\n", booking.ShopName, booking.ShopCode)
	fmt.Fprintf(&builder, "- 메뉴: %s\n", booking.MenuName)
	fmt.Fprintf(&builder, "- 일시: %s\n", formatReservedAt(booking.ReservedAt, loc))
	if booking.ID != "" && strings.TrimSpace(adminBaseURL) != "" {
		fmt.Fprintf(&builder, "[관리 화면에서 확인](%s/%s)\n", strings.TrimRight(adminBaseURL, "/"), booking.ID)
	}
	return builder.String()
}

func buildSlackBookingMessage(adminBaseURL string, user common.User, booking publicdomain.Booking, loc *time.Location) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, ":calendar: %s 님의 새 예약이 있습니다.\n", user.DisplayName())
	fmt.Fprintf(&builder, "매장: %s (%s)\n", booking.ShopName, booking.ShopCode)
	fmt.Fprintf(&builder, "메뉴: %s / %s\n", booking.MenuName, formatReservedAt(booking.ReservedAt, loc))
	if booking.ID != "" && strings.TrimSpace(adminBaseURL) != "" {
		fmt.Fprintf(&builder, "관리 화면: %s/%s\n", strings.TrimRight(adminBaseURL, "/"), booking.ID)
	}
	return builder.String()
}

func (h *Handler) notifyAdminChannels(ctx context.Context, user common.User, booking publicdomain.Booking) {
	discordDest := strings.TrimSpace(h.discordDestination)
	slackDest := strings.TrimSpace(h.slackDestination)
	if discordDest == "" && slackDest == "" {
		return
	}

	identifier := booking.ID
	if identifier == "" {
		identifier = user.ID
	}
	if identifier == "" {
		identifier = "admin"
	}

	var discordErr, slackErr error
	attempts := 0
	if discordDest != "" {
		message := buildDiscordBookingMessage(h.adminBookingBaseURL, user, booking, h.location)
		discordErr = h.sendMessengerWithRetry(ctx, discordDest, identifier, message, 3, 200*time.Millisecond)
		attempts += 3
		if discordErr == nil {
			return
		}
		h.logger.Warn("discord notification failed", zap.String("bookingId", booking.ID), zap.Error(discordErr))
	}

	if slackDest != "" {
		message := buildSlackBookingMessage(h.adminBookingBaseURL, user, booking, h.location)
		slackErr = h.sendMessengerWithRetry(ctx, slackDest, identifier, message, 1, 0)
		attempts++
		if slackErr == nil {
			return
		}
		h.logger.Warn("slack notification failed", zap.String("bookingId", booking.ID), zap.Error(slackErr))
	}

	h.persistNotificationFailure(ctx, user, booking, errors.Join(discordErr, slackErr), attempts)
}

func (h *Handler) sendMessengerWithRetry(ctx context.Context, destination, userID, text string, attempts int, delay time.Duration) error {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return errors.New("destination is empty")
	}
	attempts = max(attempts, 1)
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = h.sendMessengerMessage(ctx, destination, userID, text)
		if lastErr == nil {
			return nil
		}
		if delay > 0 && i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return lastErr
}

func (h *Handler) persistNotificationFailure(ctx context.Context, user common.User, booking publicdomain.Booking, cause error, attempts int) {
	if h.failedNotifications == nil || cause == nil {
		return
	}
	payload := map[string]any{
		"bookingId":  booking.ID,
		"shopCode":   booking.ShopCode,
		"shopName":   booking.ShopName,
		"menuName":   booking.MenuName,
		"reservedAt": booking.ReservedAt,
		"userId":     user.ID,
		"username":   user.Username,
	}
	if err := h.failedNotifications.Save(ctx, adminNotificationTarget, payload, cause, attempts); err != nil {
		h.logger.Error("failed notification persist failed", zap.String("bookingId", booking.ID), zap.Error(err))
	}
}

func (h *Handler) sendMessengerMessage(ctx context.Context, destination, userID, bodyText string) error {
	trimmedUserID := strings.TrimSpace(userID)
	if trimmedUserID == "" {
		return errors.New("userID is required")
	}

	payload := map[string]any{
		"userId": trimmedUserID,
		"text":   bodyText,
	}
	if dest := strings.TrimSpace(destination); dest != "" {
		payload["destination"] = dest
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode messenger payload: %w", err)
	}

	timeout := h.httpClient.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := strings.TrimRight(h.messengerEndpoint, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build messenger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("messenger responded status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	return nil
}

func formatReservedAt(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006년 1월 2일 15:04")
}
