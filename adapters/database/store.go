package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lotbid/auction"
	"lotbid/models"
)

type storeOptions struct {
	logger *slog.Logger
	clock  func() time.Time
}

type StoreOption func(*storeOptions)

// WithStoreLogger 設置日誌記錄器
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// WithStoreClock 設置出價時間的來源 (主要用於測試)
func WithStoreClock(clock func() time.Time) StoreOption {
	return func(o *storeOptions) {
		o.clock = clock
	}
}

// Store 以 gorm 實作 auction.Store
type Store struct {
	db      *gorm.DB
	logger  *slog.Logger
	options storeOptions
}

var _ auction.Store = (*Store)(nil)

func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	options := storeOptions{
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Store{
		db:      db,
		logger:  options.logger.With(slog.String("caller", "AuctionStore")),
		options: options,
	}
}

func (s *Store) GetListingWithBids(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	const op = "GetListingWithBids"
	var listing models.Listing
	err := s.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		}).
		Preload("Winner").
		First(&listing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("[%s] Listing %s, err=%w", op, id, auction.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find listing, err=%w", op, err)
	}
	listing.BidCount = int64(len(listing.Bids))
	return &listing, nil
}

const createLotAttempts = 3

func (s *Store) CreateListing(ctx context.Context, input auction.ListingInput) (*models.Listing, error) {
	const op = "CreateListing"
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	listing := models.Listing{
		Title:       input.Title,
		Description: input.Description,
		Make:        input.Make,
		Model:       input.Model,
		Year:        input.Year,
		Mileage:     input.Mileage,
		Engine:      input.Engine,
		Image:       input.Image,
		Status:      input.Status,
		StartPrice:  input.StartingBid,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	}
	// 從車輛資料複製快照
	if input.VehicleID != nil {
		var vehicle models.Vehicle
		err := s.db.WithContext(ctx).First(&vehicle, "id = ?", *input.VehicleID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auction.NewValidationError("vehicleId", fmt.Sprintf("vehicle %s does not exist", *input.VehicleID))
		}
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to find vehicle, err=%w", op, err)
		}
		listing.VehicleID = lo.ToPtr(vehicle.ID)
		listing.Make = vehicle.Make
		listing.Model = vehicle.Model
		listing.Year = vehicle.Year
		listing.Mileage = vehicle.Mileage
		listing.Engine = vehicle.Engine
		listing.Image = lo.Ternary(input.Image != "", input.Image, vehicle.FirstImage())
	}

	var err error
	for attempt := 0; attempt < createLotAttempts; attempt++ {
		listing.ID = uuid.Nil
		listing.Lot = newLot()
		err = s.db.WithContext(ctx).Create(&listing).Error
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.logger.Warn("Lot code collision, retrying", slog.String("lot", listing.Lot))
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create listing, err=%w", op, err)
	}
	return &listing, nil
}

// newLot 產生對外顯示的拍賣編號，例如 LOT-3F9A1C07
func newLot() string {
	return "LOT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *Store) ListListings(ctx context.Context, query auction.ListQuery) ([]models.Listing, int64, error) {
	const op = "ListListings"
	filtered := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&models.Listing{})
		if query.Status != "" {
			db = db.Where("status = ?", query.Status)
		}
		if !query.IncludeDrafts {
			db = db.Where("status <> ?", models.StatusDraft)
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("[%s] Fail to count listings, err=%w", op, err)
	}

	page := max(query.Page, 1)
	size := query.PageSize
	if size <= 0 {
		size = auction.DefaultPageSize
	}
	var listings []models.Listing
	err := filtered().
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "created_at"}, Desc: true},
			{Column: clause.Column{Name: "id"}, Desc: true},
		}}).
		Offset((page - 1) * size).
		Limit(size).
		Find(&listings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("[%s] Fail to find listings, err=%w", op, err)
	}
	if len(listings) == 0 {
		return listings, total, nil
	}

	// 以聚合查詢取得出價數與最高價，不載入完整出價
	type bidStats struct {
		ListingID uuid.UUID
		Count     int64
		Highest   decimal.NullDecimal
	}
	var stats []bidStats
	ids := lo.Map(listings, func(l models.Listing, _ int) uuid.UUID { return l.ID })
	err = s.db.WithContext(ctx).Model(&models.Bid{}).
		Select("listing_id, COUNT(*) AS count, MAX(amount) AS highest").
		Where("listing_id IN ?", ids).
		Group("listing_id").
		Scan(&stats).Error
	if err != nil {
		return nil, 0, fmt.Errorf("[%s] Fail to aggregate bids, err=%w", op, err)
	}
	byID := lo.KeyBy(stats, func(st bidStats) uuid.UUID { return st.ListingID })
	for i := range listings {
		if st, ok := byID[listings[i].ID]; ok {
			listings[i].BidCount = st.Count
			listings[i].HighestAmount = st.Highest
		}
	}
	return listings, total, nil
}

func (s *Store) UpdateSettlement(ctx context.Context, id uuid.UUID, update auction.SettlementUpdate) (bool, error) {
	const op = "UpdateSettlement"
	// 只有尚未結算時才寫入，多個結算同時進行時只有一個會成功
	result := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND status = ? AND settled_at IS NULL", id, models.StatusEnded).
		Updates(map[string]any{
			"winning_bid_id": update.WinningBidID,
			"winner_user_id": update.WinnerUserID,
			"final_price":    update.FinalPrice,
			"settled_at":     update.SettledAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("[%s] Fail to update settlement, err=%w", op, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from models.Status, change auction.StatusChange) (*models.Listing, error) {
	const op = "UpdateStatus"
	values := map[string]any{"status": change.To}
	if change.StartTime != nil {
		values["start_time"] = *change.StartTime
	}
	if change.EndTime != nil {
		values["end_time"] = *change.EndTime
	}
	result := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to update status, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		// 拍賣不存在，或狀態已經被其他請求改變
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("[%s] Fail to check listing, err=%w", op, err)
		}
		if count == 0 {
			return nil, fmt.Errorf("[%s] Listing %s, err=%w", op, id, auction.ErrNotFound)
		}
		return nil, fmt.Errorf("[%s] Listing %s is no longer %s, err=%w", op, id, from, auction.ErrPreconditionFailed)
	}
	return s.GetListingWithBids(ctx, id)
}

func (s *Store) PlaceBid(ctx context.Context, listingID uuid.UUID, admit auction.AdmitFunc) (*auction.BidReceipt, error) {
	const op = "PlaceBid"
	var receipt *auction.BidReceipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snapshot auction.BidSnapshot

		// 鎖住拍賣，同一個拍賣的出價在這裡排隊
		var listing models.Listing
		locked := tx
		if tx.Dialector.Name() == DriverPostgres {
			locked = tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
		}
		err := locked.First(&listing, "id = ?", listingID).Error
		// 等待鎖的時間不能算在出價之前
		snapshot.Now = s.options.clock().UTC()
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return fmt.Errorf("fail to lock listing, err=%w", err)
		default:
			snapshot.Listing = &listing
		}

		if snapshot.Listing != nil {
			var highest models.Bid
			err := tx.Where("listing_id = ?", listingID).
				Order(clause.OrderBy{Columns: []clause.OrderByColumn{
					{Column: clause.Column{Name: "amount"}, Desc: true},
					{Column: clause.Column{Name: "created_at"}},
					{Column: clause.Column{Name: "id"}},
				}}).
				Take(&highest).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
			case err != nil:
				return fmt.Errorf("fail to find highest bid, err=%w", err)
			default:
				snapshot.Highest = &highest
			}
			if err := tx.Model(&models.Bid{}).Where("listing_id = ?", listingID).Count(&snapshot.BidCount).Error; err != nil {
				return fmt.Errorf("fail to count bids, err=%w", err)
			}
		}

		draft, err := admit(snapshot)
		if err != nil {
			return err
		}

		bid := models.Bid{
			ListingID: listingID,
			UserID:    draft.UserID,
			Amount:    draft.Amount,
			CreatedAt: snapshot.Now,
		}
		if err := tx.Create(&bid).Error; err != nil {
			return fmt.Errorf("fail to create bid, err=%w", err)
		}
		receipt = &auction.BidReceipt{
			Bid:      bid,
			BidCount: snapshot.BidCount + 1,
			EndTime:  listing.EndTime,
		}
		if draft.ExtendEndTime != nil {
			if err := tx.Model(&models.Listing{}).Where("id = ?", listingID).Update("end_time", *draft.ExtendEndTime).Error; err != nil {
				return fmt.Errorf("fail to extend end time, err=%w", err)
			}
			receipt.EndTime = draft.ExtendEndTime
			receipt.Extended = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", op, err)
	}
	return receipt, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "GetUser"
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("[%s] User %s, err=%w", op, id, auction.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find user, err=%w", op, err)
	}
	return &user, nil
}

// UpsertUser 同步已驗證身份的使用者，讓出價能關聯到使用者資料
func (s *Store) UpsertUser(ctx context.Context, user models.User) error {
	const op = "UpsertUser"
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "role", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("[%s] Fail to upsert user, err=%w", op, err)
	}
	return nil
}
