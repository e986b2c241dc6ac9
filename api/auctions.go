package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"lotbid/adapters/auth"
	"lotbid/adapters/kafka"
	"lotbid/api/openapi"
	"lotbid/auction"
	"lotbid/models"
)

var _ openapi.StrictServerInterface = (*ServerImpl)(nil)

func errorBody(message string) openapi.ErrorResponse {
	return openapi.ErrorResponse{Success: false, Message: message}
}

func isAdmin(ctx context.Context) bool {
	identity, ok := auth.GetIdentity(ctx)
	return ok && identity.IsAdmin()
}

// requireAdmin 通過時回傳 0，否則回傳 401 或 403 與錯誤內容
func requireAdmin(ctx context.Context) (int, openapi.ErrorResponse) {
	if _, err := auth.Authorize(ctx, models.RoleAdmin); err != nil {
		status, message := classify(err)
		return status, errorBody(message)
	}
	return 0, openapi.ErrorResponse{}
}

func (impl *ServerImpl) GetAuctions(ctx context.Context, request openapi.GetAuctionsRequestObject) (openapi.GetAuctionsResponseObject, error) {
	admin := isAdmin(ctx)
	query := auction.ListQuery{
		Page:          1,
		PageSize:      lo.Ternary(admin, auction.DefaultAdminPageSize, auction.DefaultPageSize),
		IncludeDrafts: admin,
	}

	params := request.Params
	if params.Page != nil {
		if *params.Page < 1 {
			return openapi.GetAuctions400JSONResponse(errorBody("page must be a positive integer")), nil
		}
		query.Page = *params.Page
	}
	if params.PageSize != nil {
		if *params.PageSize < 1 || *params.PageSize > auction.MaxPageSize {
			return openapi.GetAuctions400JSONResponse(errorBody("pageSize must be between 1 and 100")), nil
		}
		query.PageSize = *params.PageSize
	}
	if status := models.Status(lo.FromPtr(params.Status)); status != "" {
		if !status.Valid() {
			return openapi.GetAuctions400JSONResponse(errorBody("unknown status")), nil
		}
		if status == models.StatusDraft && !admin {
			return openapi.GetAuctions200JSONResponse{
				Items:    []openapi.AuctionSummary{},
				Page:     query.Page,
				PageSize: query.PageSize,
			}, nil
		}
		query.Status = status
	}

	listings, total, err := impl.store.ListListings(ctx, query)
	if err != nil {
		return nil, err
	}
	return openapi.GetAuctions200JSONResponse{
		Items: lo.Map(listings, func(listing models.Listing, _ int) openapi.AuctionSummary {
			return toAuctionSummary(auction.NewListingSummary(listing))
		}),
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}, nil
}

func (impl *ServerImpl) GetAuctionsAuctionID(ctx context.Context, request openapi.GetAuctionsAuctionIDRequestObject) (openapi.GetAuctionsAuctionIDResponseObject, error) {
	listing, err := impl.store.GetListingWithBids(ctx, request.AuctionID)
	if errors.Is(err, auction.ErrNotFound) {
		return openapi.GetAuctionsAuctionID404JSONResponse(errorBody("auction not found")), nil
	}
	if err != nil {
		return nil, err
	}
	if !listing.Status.PubliclyVisible() && !isAdmin(ctx) {
		return openapi.GetAuctionsAuctionID404JSONResponse(errorBody("auction not found")), nil
	}
	return openapi.GetAuctionsAuctionID200JSONResponse(toAuctionState(auction.NewStateSnapshot(listing, impl.clock().UTC()))), nil
}

func (impl *ServerImpl) PostAuctions(ctx context.Context, request openapi.PostAuctionsRequestObject) (openapi.PostAuctionsResponseObject, error) {
	switch status, body := requireAdmin(ctx); status {
	case http.StatusUnauthorized:
		return openapi.PostAuctions401JSONResponse(body), nil
	case http.StatusForbidden:
		return openapi.PostAuctions403JSONResponse(body), nil
	}

	input := toListingInput(*request.Body)
	input.Description = impl.htmlChecker.Sanitize(input.Description)
	listing, err := impl.store.CreateListing(ctx, input)
	if err != nil {
		if status, message := classify(err); status == http.StatusBadRequest {
			return openapi.PostAuctions400JSONResponse(errorBody(message)), nil
		}
		return nil, err
	}
	impl.logger.Info("Listing created",
		slog.String("auctionId", listing.ID.String()),
		slog.String("lot", listing.Lot))
	return openapi.PostAuctions201JSONResponse{Success: true, Id: listing.ID, Lot: listing.Lot}, nil
}

func (impl *ServerImpl) PostAuctionsAuctionIDStatus(ctx context.Context, request openapi.PostAuctionsAuctionIDStatusRequestObject) (openapi.PostAuctionsAuctionIDStatusResponseObject, error) {
	switch status, body := requireAdmin(ctx); status {
	case http.StatusUnauthorized:
		return openapi.PostAuctionsAuctionIDStatus401JSONResponse(body), nil
	case http.StatusForbidden:
		return openapi.PostAuctionsAuctionIDStatus403JSONResponse(body), nil
	}

	id := request.AuctionID
	listing, err := impl.engine.TransitionStatus(ctx, id, models.Status(request.Body.Status))
	if err != nil {
		switch status, message := classify(err); status {
		case http.StatusBadRequest:
			return openapi.PostAuctionsAuctionIDStatus400JSONResponse(errorBody(message)), nil
		case http.StatusNotFound:
			return openapi.PostAuctionsAuctionIDStatus404JSONResponse(errorBody(message)), nil
		case http.StatusConflict:
			return openapi.PostAuctionsAuctionIDStatus409JSONResponse(errorBody(message)), nil
		}
		return nil, err
	}
	impl.notifier.Notify(ctx, id.String(), auction.EventState, auction.NewStateSnapshot(listing, impl.clock().UTC()))

	if listing.Status == models.StatusEnded {
		result, err := impl.settle(ctx, listing.ID)
		if err != nil {
			// 狀態已經轉換，結算失敗可以之後再呼叫 settle 補做
			impl.logger.Error("Fail to settle after ending", slog.String("auctionId", id.String()), slog.Any("error", err))
		} else if result != nil {
			if reloaded, err := impl.store.GetListingWithBids(ctx, id); err == nil {
				listing = reloaded
			}
		}
	}
	return openapi.PostAuctionsAuctionIDStatus200JSONResponse(toAuctionState(auction.NewStateSnapshot(listing, impl.clock().UTC()))), nil
}

func (impl *ServerImpl) GetAuctionsAuctionIDResult(ctx context.Context, request openapi.GetAuctionsAuctionIDResultRequestObject) (openapi.GetAuctionsAuctionIDResultResponseObject, error) {
	listing, err := impl.store.GetListingWithBids(ctx, request.AuctionID)
	if errors.Is(err, auction.ErrNotFound) {
		return openapi.GetAuctionsAuctionIDResult404JSONResponse(errorBody("auction not found")), nil
	}
	if err != nil {
		return nil, err
	}
	return openapi.GetAuctionsAuctionIDResult200JSONResponse(toAuctionResult(auction.NewResultView(listing))), nil
}

func (impl *ServerImpl) PostAuctionsAuctionIDSettle(ctx context.Context, request openapi.PostAuctionsAuctionIDSettleRequestObject) (openapi.PostAuctionsAuctionIDSettleResponseObject, error) {
	switch status, body := requireAdmin(ctx); status {
	case http.StatusUnauthorized:
		return openapi.PostAuctionsAuctionIDSettle401JSONResponse(body), nil
	case http.StatusForbidden:
		return openapi.PostAuctionsAuctionIDSettle403JSONResponse(body), nil
	}

	result, err := impl.settle(ctx, request.AuctionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return openapi.PostAuctionsAuctionIDSettle400JSONResponse(errorBody(settleUnavailable)), nil
	}
	return openapi.PostAuctionsAuctionIDSettle200JSONResponse{
		Success:    true,
		Settled:    result.Settled,
		FinalPrice: result.FinalPrice,
		Winner:     toWinner(result.Winner()),
		BidCount:   result.BidCount,
	}, nil
}

const settleUnavailable = "auction not found or not ended"

// settle 執行結算並通知房間，只有這次真的寫入結果時才發布領域事件
func (impl *ServerImpl) settle(ctx context.Context, id uuid.UUID) (*auction.SettlementResult, error) {
	result, err := impl.engine.SettleAuctionIfNeeded(ctx, id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	impl.metrics.settlement(result.Settled)
	impl.notifier.Notify(ctx, id.String(), auction.EventAuctionEnded, auction.NewEndedPayload(id, *result))
	if result.Settled {
		impl.publishSettled(ctx, id, *result)
	}
	return result, nil
}

func (impl *ServerImpl) publishSettled(ctx context.Context, id uuid.UUID, result auction.SettlementResult) {
	listing, err := impl.store.GetListingWithBids(ctx, id)
	if err != nil {
		impl.metrics.eventFailed()
		impl.logger.Warn("Fail to load settled listing", slog.String("auctionId", id.String()), slog.Any("error", err))
		return
	}
	event := kafka.SettledEvent{
		AuctionID:  id,
		Lot:        listing.Lot,
		WinnerID:   result.WinnerID,
		FinalPrice: result.FinalPrice,
		BidCount:   result.BidCount,
		SettledAt:  impl.clock().UTC(),
	}
	if listing.SettledAt != nil {
		event.SettledAt = *listing.SettledAt
	}
	if err := impl.publisher.PublishSettled(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		impl.metrics.eventFailed()
		impl.logger.Warn("Fail to publish settled event", slog.String("auctionId", id.String()), slog.Any("error", err))
	}
}

func toListingInput(body openapi.CreateAuctionRequest) auction.ListingInput {
	return auction.ListingInput{
		Title:       body.Title,
		StartingBid: body.StartingBid,
		Description: lo.FromPtr(body.Description),
		VehicleID:   body.VehicleId,
		Make:        lo.FromPtr(body.Make),
		Model:       lo.FromPtr(body.Model),
		Year:        lo.FromPtr(body.Year),
		Mileage:     lo.FromPtr(body.Mileage),
		Engine:      lo.FromPtr(body.Engine),
		Image:       lo.FromPtr(body.Image),
		Status:      models.Status(lo.FromPtr(body.Status)),
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	}
}

func toWinner(winner *auction.Winner) *openapi.Winner {
	if winner == nil {
		return nil
	}
	return &openapi.Winner{Id: winner.ID, Name: winner.Name}
}

func toBid(bid auction.BidView) openapi.Bid {
	return openapi.Bid{
		Id:        bid.ID,
		AuctionId: bid.AuctionID,
		BidderId:  bid.BidderID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt,
	}
}

func toAuctionState(snapshot auction.StateSnapshot) openapi.AuctionState {
	state := openapi.AuctionState{
		AuctionId:    snapshot.AuctionID,
		Lot:          snapshot.Lot,
		Title:        snapshot.Title,
		Make:         snapshot.Make,
		Model:        snapshot.Model,
		Year:         snapshot.Year,
		Mileage:      snapshot.Mileage,
		Engine:       snapshot.Engine,
		Image:        snapshot.Image,
		Status:       openapi.AuctionStatus(snapshot.Status),
		StartPrice:   snapshot.StartPrice,
		CurrentPrice: snapshot.CurrentPrice,
		BidCount:     snapshot.BidCount,
		RecentBids:   lo.Map(snapshot.RecentBids, func(bid auction.BidView, _ int) openapi.Bid { return toBid(bid) }),
		StartTime:    snapshot.StartTime,
		EndTime:      snapshot.EndTime,
		ServerTime:   snapshot.ServerTime,
		Settled:      snapshot.Settled,
		FinalPrice:   snapshot.FinalPrice,
		Winner:       toWinner(snapshot.Winner),
	}
	if snapshot.Highest != nil {
		state.Highest = lo.ToPtr(toBid(*snapshot.Highest))
	}
	return state
}

func toAuctionSummary(summary auction.ListingSummary) openapi.AuctionSummary {
	return openapi.AuctionSummary{
		Id:           summary.ID,
		Lot:          summary.Lot,
		Title:        summary.Title,
		Make:         summary.Make,
		Model:        summary.Model,
		Year:         summary.Year,
		Mileage:      summary.Mileage,
		Engine:       summary.Engine,
		Image:        summary.Image,
		Status:       openapi.AuctionStatus(summary.Status),
		StartPrice:   summary.StartPrice,
		CurrentPrice: summary.CurrentPrice,
		BidCount:     summary.BidCount,
		StartTime:    summary.StartTime,
		EndTime:      summary.EndTime,
	}
}

func toAuctionResult(view auction.ResultView) openapi.AuctionResult {
	return openapi.AuctionResult{
		AuctionId:  view.AuctionID,
		Status:     openapi.AuctionStatus(view.Status),
		Settled:    view.Settled,
		FinalPrice: view.FinalPrice,
		Winner:     toWinner(view.Winner),
		BidCount:   view.BidCount,
	}
}
