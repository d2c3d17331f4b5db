package services

import (
	"context"
	"sync"
	"time"

	"carxpress/internal/models"
	"carxpress/internal/repositories/interfaces"
	"carxpress/internal/utils"
	"carxpress/pkg/logger"
	"carxpress/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{
		Level:  logger.ErrorLevel,
		Format: "text",
		Output: "stderr",
	})
	return log
}

// fakeCarRepo keeps cars in memory and mirrors the guarded writes of the
// real repository, so lost races surface the same way in tests.
type fakeCarRepo struct {
	mu   sync.Mutex
	cars map[primitive.ObjectID]*models.Car
}

func newFakeCarRepo() *fakeCarRepo {
	return &fakeCarRepo{cars: make(map[primitive.ObjectID]*models.Car)}
}

func (f *fakeCarRepo) put(car *models.Car) *models.Car {
	f.mu.Lock()
	defer f.mu.Unlock()
	if car.ID.IsZero() {
		car.ID = primitive.NewObjectID()
	}
	if car.Availability == "" {
		car.Availability = models.CarAvailable
	}
	f.cars[car.ID] = car
	return car
}

func (f *fakeCarRepo) Create(ctx context.Context, car *models.Car) error {
	f.put(car)
	return nil
}

func (f *fakeCarRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[id]
	if !ok {
		return nil, utils.NewNotFound("car")
	}
	clone := *car
	return &clone, nil
}

func (f *fakeCarRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cars[id]; !ok {
		return utils.NewNotFound("car")
	}
	return nil
}

func (f *fakeCarRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cars[id]; !ok {
		return utils.NewNotFound("car")
	}
	delete(f.cars, id)
	return nil
}

func (f *fakeCarRepo) GetByDealerID(ctx context.Context, dealerID primitive.ObjectID) ([]*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Car
	for _, car := range f.cars {
		if car.DealerID == dealerID {
			clone := *car
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeCarRepo) DeleteByDealerID(ctx context.Context, dealerID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, car := range f.cars {
		if car.DealerID == dealerID {
			delete(f.cars, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeCarRepo) UpdateAvailability(ctx context.Context, id primitive.ObjectID, availability models.CarAvailability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[id]
	if !ok {
		return utils.NewNotFound("car")
	}
	car.Availability = availability
	return nil
}

func (f *fakeCarRepo) MarkSold(ctx context.Context, id primitive.ObjectID, buyerID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[id]
	if !ok || !car.ForSale || car.IsSold {
		return utils.NewInvalidState("car is no longer an unsold sale listing")
	}
	car.IsSold = true
	car.ForSale = false
	car.BuyerID = &buyerID
	car.Availability = models.CarUnavailable
	return nil
}

func (f *fakeCarRepo) AddRental(ctx context.Context, carID, rentalID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[carID]
	if !ok {
		return utils.NewNotFound("car")
	}
	car.Rentals = append(car.Rentals, rentalID)
	return nil
}

func (f *fakeCarRepo) AddReview(ctx context.Context, carID primitive.ObjectID, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[carID]
	if !ok {
		return utils.NewNotFound("car")
	}
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	car.Reviews = append(car.Reviews, *review)
	return nil
}

func (f *fakeCarRepo) RemoveReview(ctx context.Context, carID, reviewID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[carID]
	if !ok {
		return utils.NewNotFound("car")
	}
	for i, review := range car.Reviews {
		if review.ID == reviewID {
			car.Reviews = append(car.Reviews[:i], car.Reviews[i+1:]...)
			return nil
		}
	}
	return utils.NewNotFound("review")
}

func (f *fakeCarRepo) List(ctx context.Context, filter *interfaces.CarListFilter, params *utils.PaginationParams) ([]*models.Car, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Car
	for _, car := range f.cars {
		if filter != nil {
			if filter.DealerID != nil && car.DealerID != *filter.DealerID {
				continue
			}
			if filter.ForSale != nil && car.ForSale != *filter.ForSale {
				continue
			}
			if filter.Availability != "" && car.Availability != filter.Availability {
				continue
			}
		}
		clone := *car
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCarRepo) GetByPriceExtreme(ctx context.Context, forSale, highest bool) (*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Car
	for _, car := range f.cars {
		if car.ForSale != forSale || car.IsSold {
			continue
		}
		price := car.PricePerDay
		if forSale {
			price = car.SalePrice
		}
		if best == nil {
			clone := *car
			best = &clone
			continue
		}
		bestPrice := best.PricePerDay
		if forSale {
			bestPrice = best.SalePrice
		}
		if (highest && price > bestPrice) || (!highest && price < bestPrice) {
			clone := *car
			best = &clone
		}
	}
	if best == nil {
		return nil, utils.NewNotFound("car")
	}
	return best, nil
}

func (f *fakeCarRepo) GetTotalCount(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.cars)), nil
}

func (f *fakeCarRepo) GetCountByAvailability(ctx context.Context, availability models.CarAvailability) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, car := range f.cars {
		if car.Availability == availability {
			count++
		}
	}
	return count, nil
}

// fakeRentalRepo mirrors the guarded status write: UpdateStatus only
// lands while the rental still holds the expected current status.
type fakeRentalRepo struct {
	mu      sync.Mutex
	rentals map[primitive.ObjectID]*models.Rental
	order   []primitive.ObjectID
}

func newFakeRentalRepo() *fakeRentalRepo {
	return &fakeRentalRepo{rentals: make(map[primitive.ObjectID]*models.Rental)}
}

func (f *fakeRentalRepo) put(rental *models.Rental) *models.Rental {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rental.ID.IsZero() {
		rental.ID = primitive.NewObjectID()
	}
	if rental.Status == "" {
		rental.Status = models.RentalStatusPending
	}
	if _, exists := f.rentals[rental.ID]; !exists {
		f.order = append(f.order, rental.ID)
	}
	f.rentals[rental.ID] = rental
	return rental
}

func (f *fakeRentalRepo) Create(ctx context.Context, rental *models.Rental) error {
	rental.CreatedAt = time.Now()
	rental.UpdatedAt = rental.CreatedAt
	f.put(rental)
	return nil
}

func (f *fakeRentalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rental, ok := f.rentals[id]
	if !ok {
		return nil, utils.NewNotFound("rental")
	}
	clone := *rental
	return &clone, nil
}

func (f *fakeRentalRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rentals[id]; !ok {
		return utils.NewNotFound("rental")
	}
	delete(f.rentals, id)
	return nil
}

func (f *fakeRentalRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RentalStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rental, ok := f.rentals[id]
	if !ok || rental.Status != from {
		return utils.NewInvalidState("rental is no longer " + string(from))
	}
	rental.Status = to
	rental.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRentalRepo) RejectOtherPending(ctx context.Context, carID, approvedID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rejected int64
	for _, rental := range f.rentals {
		if rental.CarID == carID && rental.Status == models.RentalStatusPending && rental.ID != approvedID {
			rental.Status = models.RentalStatusRejected
			rejected++
		}
	}
	return rejected, nil
}

func (f *fakeRentalRepo) ExistsPendingForUserAndCar(ctx context.Context, userID, carID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rental := range f.rentals {
		if rental.UserID == userID && rental.CarID == carID && rental.Status == models.RentalStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRentalRepo) ExistsApprovedForCar(ctx context.Context, carID, exclude primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rental := range f.rentals {
		if rental.CarID == carID && rental.Status == models.RentalStatusApproved && rental.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRentalRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Rental
	for _, id := range f.order {
		rental, ok := f.rentals[id]
		if ok && rental.UserID == userID {
			clone := *rental
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRentalRepo) GetByCarID(ctx context.Context, carID primitive.ObjectID) ([]*models.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Rental
	for _, id := range f.order {
		rental, ok := f.rentals[id]
		if ok && rental.CarID == carID {
			clone := *rental
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRentalRepo) GetByCarIDs(ctx context.Context, carIDs []primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[primitive.ObjectID]bool, len(carIDs))
	for _, id := range carIDs {
		ids[id] = true
	}
	var out []*models.Rental
	for _, id := range f.order {
		rental, ok := f.rentals[id]
		if ok && ids[rental.CarID] {
			clone := *rental
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRentalRepo) List(ctx context.Context, status models.RentalStatus, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Rental
	for _, id := range f.order {
		rental, ok := f.rentals[id]
		if ok && (status == "" || rental.Status == status) {
			clone := *rental
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRentalRepo) DeleteByCarIDs(ctx context.Context, carIDs []primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[primitive.ObjectID]bool, len(carIDs))
	for _, id := range carIDs {
		ids[id] = true
	}
	var deleted int64
	for id, rental := range f.rentals {
		if ids[rental.CarID] {
			delete(f.rentals, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeRentalRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, rental := range f.rentals {
		if rental.UserID == userID {
			delete(f.rentals, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeSaleRepo enforces the one-sale-per-car unique index.
type fakeSaleRepo struct {
	mu    sync.Mutex
	sales map[primitive.ObjectID]*models.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[primitive.ObjectID]*models.Sale)}
}

func (f *fakeSaleRepo) Create(ctx context.Context, sale *models.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.sales {
		if existing.CarID == sale.CarID {
			return utils.NewInvalidState("car has already been sold")
		}
	}
	if sale.ID.IsZero() {
		sale.ID = primitive.NewObjectID()
	}
	sale.CreatedAt = time.Now()
	f.sales[sale.ID] = sale
	return nil
}

func (f *fakeSaleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sale, ok := f.sales[id]
	if !ok {
		return nil, utils.NewNotFound("sale")
	}
	clone := *sale
	return &clone, nil
}

func (f *fakeSaleRepo) GetByCarID(ctx context.Context, carID primitive.ObjectID) (*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sale := range f.sales {
		if sale.CarID == carID {
			clone := *sale
			return &clone, nil
		}
	}
	return nil, utils.NewNotFound("sale")
}

func (f *fakeSaleRepo) List(ctx context.Context, filter *interfaces.SaleListFilter, params *utils.PaginationParams) ([]*models.Sale, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Sale
	for _, sale := range f.sales {
		if filter != nil {
			if filter.DealerID != nil && sale.DealerID != *filter.DealerID {
				continue
			}
			if filter.BuyerID != nil && sale.BuyerID != *filter.BuyerID {
				continue
			}
		}
		clone := *sale
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSaleRepo) GetStats(ctx context.Context, dealerID *primitive.ObjectID) (*interfaces.SaleStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &interfaces.SaleStats{}
	for _, sale := range f.sales {
		if dealerID != nil && sale.DealerID != *dealerID {
			continue
		}
		stats.TotalSales++
		stats.TotalRevenue += sale.SalePrice
	}
	if stats.TotalSales > 0 {
		stats.AveragePrice = stats.TotalRevenue / float64(stats.TotalSales)
	}
	return stats, nil
}

type fakeApprovalRepo struct {
	mu        sync.Mutex
	approvals map[primitive.ObjectID]*models.Approval
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{approvals: make(map[primitive.ObjectID]*models.Approval)}
}

func (f *fakeApprovalRepo) Create(ctx context.Context, approval *models.Approval) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if approval.ID.IsZero() {
		approval.ID = primitive.NewObjectID()
	}
	if approval.Status == "" {
		approval.Status = models.ApprovalStatusPending
	}
	approval.CreatedAt = time.Now()
	approval.UpdatedAt = approval.CreatedAt
	f.approvals[approval.ID] = approval
	return nil
}

func (f *fakeApprovalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Approval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	approval, ok := f.approvals[id]
	if !ok {
		return nil, utils.NewNotFound("approval request")
	}
	clone := *approval
	return &clone, nil
}

func (f *fakeApprovalRepo) HasPendingForUser(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, approval := range f.approvals {
		if approval.UserID == userID && approval.Status == models.ApprovalStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApprovalRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Approval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Approval
	for _, approval := range f.approvals {
		if approval.UserID == userID {
			clone := *approval
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) List(ctx context.Context, status models.ApprovalStatus, params *utils.PaginationParams) ([]*models.Approval, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Approval
	for _, approval := range f.approvals {
		if status == "" || approval.Status == status {
			clone := *approval
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeApprovalRepo) MarkApproved(ctx context.Context, id, adminID primitive.ObjectID, approvedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	approval, ok := f.approvals[id]
	if !ok || approval.Status != models.ApprovalStatusPending {
		return utils.NewInvalidState("approval request has already been decided")
	}
	approval.Status = models.ApprovalStatusApproved
	approval.AdminID = &adminID
	approval.ApprovedAt = &approvedAt
	return nil
}

func (f *fakeApprovalRepo) MarkRejected(ctx context.Context, id, adminID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	approval, ok := f.approvals[id]
	if !ok || approval.Status != models.ApprovalStatusPending {
		return utils.NewInvalidState("approval request has already been decided")
	}
	approval.Status = models.ApprovalStatusRejected
	approval.AdminID = &adminID
	approval.ApprovedAt = nil
	return nil
}

func (f *fakeApprovalRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, approval := range f.approvals {
		if approval.UserID == userID {
			delete(f.approvals, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) put(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	for _, existing := range f.users {
		if existing.Username == user.Username {
			f.mu.Unlock()
			return utils.NewConflict("username already taken")
		}
	}
	f.mu.Unlock()
	f.put(user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, utils.NewNotFound("user")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, utils.NewNotFound("user")
}

func (f *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return utils.NewNotFound("user")
	}
	return nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return utils.NewNotFound("user")
	}
	user.Role = role
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return utils.NewNotFound("user")
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, user := range f.users {
		clone := *user
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) GetCountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, user := range f.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

// fakeStorage records uploads and deletions so cascade tests can assert
// image handles were released.
type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string]bool
	deleted  []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: make(map[string]bool)}
}

func (f *fakeStorage) Upload(ctx context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[request.Key] = true
	return &storage.UploadResponse{
		Key:  request.Key,
		URL:  "https://cdn.test/" + request.Key,
		Size: request.Size,
	}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploaded, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) FileExists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploaded[key], nil
}
