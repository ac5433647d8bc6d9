package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/feed"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/eventbus"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/geolocation"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/mapsync"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/orchestrator"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/viewport"
)

// defaultCenter is used for the map when the position never resolves.
var defaultCenter = domain.Coordinates{Latitude: 37.5665, Longitude: 126.9780}

const reservedAtLayout = "2006-01-02 15:04"

// positionWait bounds how long startup waits for the position before the
// map and the list proceed without it.
var positionWait = geolocation.DefaultTimeout + 2*time.Second

var errQuit = errors.New("quit")

type discoveryClient interface {
	feed.Source
	orchestrator.DetailSource
	orchestrator.CategorySource
	orchestrator.BookingSource
}

// listEnd is the sentinel below the last rendered shop.
type listEnd struct{}

type app struct {
	ctx      context.Context
	bus      *eventbus.Bus
	feed     *feed.Controller
	canvas   *mapsync.Canvas
	maps     *mapsync.Synchronizer
	orch     *orchestrator.Orchestrator
	view     *viewport.Viewport
	trigger  *viewport.Trigger
	position *geolocation.Provider
	logger   *zap.Logger
	out      io.Writer
	unfollow func()
}

func newApp(ctx context.Context, client discoveryClient, position *geolocation.Provider, logger *zap.Logger, out io.Writer) *app {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &app{
		ctx:      ctx,
		bus:      eventbus.New(),
		canvas:   mapsync.NewCanvas(),
		view:     viewport.NewViewport(),
		position: position,
		logger:   logger,
		out:      out,
	}
	a.orch = orchestrator.New(orchestrator.Config{
		Bus:        a.bus,
		Details:    client,
		Categories: client,
		Bookings:   client,
		Logger:     logger,
	})
	a.feed = feed.New(client, feed.WithCoordinates(position), feed.WithLogger(logger))
	a.maps = mapsync.New(a.canvas, a.orch.SelectHandler(), logger)
	a.trigger = viewport.New(a.view.NewObserver, a.loadMore)
	return a
}

// start resolves the position once, then mounts the list, the map and the
// orchestrator. A failed first page is returned but leaves the app usable.
func (a *app) start(ctx context.Context) error {
	a.position.Activate(ctx)
	a.orch.Mount(ctx)
	a.unfollow = a.maps.Follow(a.feed)

	center := defaultCenter
	waitCtx, cancel := context.WithTimeout(ctx, positionWait)
	pos, err := a.position.Wait(waitCtx)
	cancel()
	if err == nil {
		center = pos
	} else {
		a.logger.Info("position unavailable, using default center", zap.Error(err))
	}
	if err := a.maps.Ready(center); err != nil {
		a.logger.Warn("map init failed", zap.Error(err))
	}

	err = a.feed.Mount(ctx)
	a.trigger.Attach(listEnd{})
	return err
}

func (a *app) close() {
	a.trigger.Close()
	if a.unfollow != nil {
		a.unfollow()
	}
	a.orch.Close()
}

func (a *app) loadMore() {
	if a.feed.Snapshot().Loading {
		return
	}
	if err := a.feed.RequestPage(a.ctx, false); err != nil {
		a.logger.Warn("next page failed", zap.Error(err))
	}
}

func (a *app) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	a.printf("help 로 명령어를 확인하세요\n")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		err := a.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			a.printf("오류: %v\n", err)
		}
	}
	return scanner.Err()
}

func (a *app) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		a.printHelp()
	case "quit", "exit":
		return errQuit
	case "list":
		a.printList()
	case "more":
		a.view.Report(listEnd{}, 0)
		a.view.Report(listEnd{}, 1)
		a.printList()
	case "search":
		filter := a.feed.Filter()
		filter.Keyword = strings.Join(args, " ")
		if err := a.feed.SetFilter(ctx, filter); err != nil {
			return err
		}
		a.printList()
	case "category":
		filter := a.feed.Filter()
		filter.CategoryCode = ""
		if len(args) > 0 && args[0] != "all" {
			filter.CategoryCode = args[0]
		}
		if err := a.feed.SetFilter(ctx, filter); err != nil {
			return err
		}
		a.printList()
	case "categories":
		view := a.orch.State()
		if view.CategoriesErr != nil {
			return view.CategoriesErr
		}
		for _, c := range view.Categories {
			a.printf("%s\t%s\n", c.CategoryCode, c.CategoryName)
		}
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <shopCode>")
		}
		if err := a.orch.Select(ctx, args[0]); err != nil {
			return err
		}
		a.printView()
	case "emit":
		if len(args) != 1 {
			return errors.New("usage: emit <shopCode>")
		}
		eventbus.EmitSelectShop(a.bus, args[0])
		a.printView()
	case "markers":
		codes := a.maps.MarkerCodes()
		for i, m := range a.canvas.Markers() {
			code := ""
			if i < len(codes) {
				code = codes[i]
			}
			a.printf("#%d\t%s\t%.5f,%.5f\n", m.ID, code, m.Position.Latitude, m.Position.Longitude)
		}
	case "click":
		if len(args) != 1 {
			return errors.New("usage: click <markerID>")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid marker id %q", args[0])
		}
		if err := a.canvas.Click(id); err != nil {
			return err
		}
		a.printView()
	case "nearby":
		radius := 1.0
		if len(args) > 0 {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil || v <= 0 {
				return fmt.Errorf("invalid radius %q", args[0])
			}
			radius = v
		}
		center, ok := a.maps.Center()
		if !ok {
			return mapsync.ErrNotReady
		}
		codes, err := a.maps.Within(center, radius)
		if err != nil {
			return err
		}
		a.printf("%.1fkm 이내 %d곳: %s\n", radius, len(codes), strings.Join(codes, ", "))
	case "retry":
		if err := a.orch.Retry(ctx); err != nil {
			return err
		}
		a.printView()
	case "book":
		view := a.orch.State()
		if view.Detail == nil {
			return fmt.Errorf("%w: open a shop first", orchestrator.ErrInvalidTransition)
		}
		if err := a.orch.ShowBooking(*view.Detail, domain.GroupMenus(view.Detail.DetailMenus)); err != nil {
			return err
		}
		a.printView()
	case "reserve":
		req, err := parseReservation(args)
		if err != nil {
			return err
		}
		if _, err := a.orch.SubmitBooking(ctx, req); err != nil {
			return err
		}
		a.printView()
	case "back":
		if err := a.orch.Back(); err != nil {
			return err
		}
		a.printView()
	case "status":
		a.printView()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// parseReservation reads "<date> <time> <menu...> [/ memo]".
func parseReservation(args []string) (domain.BookingRequest, error) {
	if len(args) < 3 {
		return domain.BookingRequest{}, errors.New("usage: reserve 2006-01-02 15:04 <menu> [/ memo]")
	}
	reservedAt, err := time.ParseInLocation(reservedAtLayout, args[0]+" "+args[1], time.Local)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("invalid reservation time: %w", err)
	}
	menu, memo, _ := strings.Cut(strings.Join(args[2:], " "), "/")
	menu = strings.TrimSpace(menu)
	if menu == "" {
		return domain.BookingRequest{}, errors.New("menu is required")
	}
	return domain.BookingRequest{MenuName: menu, ReservedAt: reservedAt, Memo: strings.TrimSpace(memo)}, nil
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *app) printHelp() {
	a.printf(`list | more | search <keyword> | category <code|all> | categories
open <shopCode> | emit <shopCode> | markers | click <markerID> | nearby [km]
retry | book | reserve <date> <time> <menu> [/ memo] | back | status | quit
`)
}

func (a *app) printList() {
	state := a.feed.Snapshot()
	for i, shop := range state.Items {
		a.printf("%3d  %-8s %s (%s, %s)", i+1, shop.ShopCode, shop.ShopName, shop.CategoryName, shop.Location)
		if shop.AdMessage != "" {
			a.printf("  [%s]", shop.AdMessage)
		}
		a.printf("\n")
	}
	switch {
	case state.Err != nil:
		a.printf("목록을 불러오지 못했습니다: %v\n", state.Err)
	case len(state.Items) == 0:
		a.printf("검색 결과가 없습니다\n")
	case state.HasMore:
		a.printf("-- more 로 다음 페이지 --\n")
	}
}

func (a *app) printView() {
	view := a.orch.State()
	switch view.Mode {
	case orchestrator.ModeList:
		if view.Message != "" {
			a.printf("%s\n", view.Message)
		}
		a.printf("[목록] %d곳\n", len(a.feed.Items()))
	case orchestrator.ModeDetail:
		if view.Detail == nil {
			a.printf("[상세] %s 불러오는 중\n", view.SelectedShopCode)
			break
		}
		a.printf("[상세] %s %s\n", view.Detail.ShopCode, view.Detail.ShopName)
		for _, group := range domain.GroupMenus(view.Detail.DetailMenus) {
			a.printf("  %s\n", group.Category)
			for _, menu := range group.Menus {
				a.printf("    %s %d원\n", menu.MenuName, menu.Price)
			}
		}
	case orchestrator.ModeBooking:
		a.printf("[예약] %s\n", view.Booking.Shop.ShopName)
	}
	if view.Err != nil {
		a.printf("오류: %v (retry 또는 back)\n", view.Err)
	}
}
