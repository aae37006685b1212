package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/utils"
)

type PropertyService struct {
	cfg       *config.Config
	propRepo  repositories.PropertyRepository
	imageRepo repositories.PropertyImageRepository
	userRepo  repositories.UserRepository
}

func NewPropertyService(
	cfg *config.Config,
	propRepo repositories.PropertyRepository,
	imageRepo repositories.PropertyImageRepository,
	userRepo repositories.UserRepository,
) *PropertyService {
	return &PropertyService{
		cfg:       cfg,
		propRepo:  propRepo,
		imageRepo: imageRepo,
		userRepo:  userRepo,
	}
}

// ---------------------------------------------------------------------
// Landlord catalog
// ---------------------------------------------------------------------

func (s *PropertyService) Create(
	ctx context.Context,
	landlordID uuid.UUID,
	req dtos.CreatePropertyRequest,
) (*models.Property, error) {

	if !models.IsValidState(req.State) {
		return nil, utils.ErrUnknownState
	}

	rentPeriod := req.RentPeriodMonths
	if rentPeriod == 0 {
		rentPeriod = models.DefaultRentPeriodMonths
	}

	listingType := models.ParseListingType(req.ListingType)
	propertyType := models.ParsePropertyType(req.PropertyType)

	if err := checkShortletWindow(listingType, req.ShortletStart, req.ShortletEnd); err != nil {
		return nil, err
	}

	p := &models.Property{
		ID:               uuid.New(),
		LandlordID:       landlordID,
		Title:            req.Title,
		Description:      req.Description,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		UnitNumber:       req.UnitNumber,
		PropertyType:     propertyType,
		ListingType:      listingType,
		Bedrooms:         req.Bedrooms,
		RentAmount:       req.RentAmount,
		RentPeriodMonths: rentPeriod,
		ShortletStart:    req.ShortletStart,
		ShortletEnd:      req.ShortletEnd,
		IsOccupied:       false,
		IsAvailable:      true,
		PhotoURL:         req.PhotoURL,
	}

	if err := s.propRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.propRepo.GetByID(ctx, p.ID)
}

// Update applies a patch to the landlord-editable columns. Last write
// wins; occupancy never moves here.
func (s *PropertyService) Update(
	ctx context.Context,
	landlordID uuid.UUID,
	propertyID uuid.UUID,
	req dtos.PropertyPatchRequest,
) (*models.Property, error) {

	p, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	if p.LandlordID != landlordID {
		return nil, utils.ErrPermissionDenied
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		if !models.IsValidState(*req.State) {
			return nil, utils.ErrUnknownState
		}
		p.State = *req.State
	}
	if req.UnitNumber != nil {
		p.UnitNumber = *req.UnitNumber
	}
	if req.PropertyType != nil {
		p.PropertyType = models.ParsePropertyType(*req.PropertyType)
	}
	if req.ListingType != nil {
		p.ListingType = models.ParseListingType(*req.ListingType)
	}
	if req.Bedrooms != nil {
		p.Bedrooms = req.Bedrooms
	}
	if req.RentAmount != nil {
		p.RentAmount = *req.RentAmount
	}
	if req.RentPeriodMonths != nil {
		p.RentPeriodMonths = *req.RentPeriodMonths
	}
	if req.ShortletStart != nil {
		p.ShortletStart = req.ShortletStart
	}
	if req.ShortletEnd != nil {
		p.ShortletEnd = req.ShortletEnd
	}
	if req.PhotoURL != nil {
		p.PhotoURL = req.PhotoURL
	}
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}

	if err := checkShortletWindow(p.ListingType, p.ShortletStart, p.ShortletEnd); err != nil {
		return nil, err
	}

	if err := s.propRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.propRepo.GetByID(ctx, propertyID)
}

func (s *PropertyService) Delete(ctx context.Context, landlordID, propertyID uuid.UUID) error {
	p, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if p == nil {
		return pgx.ErrNoRows
	}
	if p.LandlordID != landlordID {
		return utils.ErrPermissionDenied
	}
	return s.propRepo.DeleteCascade(ctx, propertyID)
}

func (s *PropertyService) GetOwned(ctx context.Context, landlordID, propertyID uuid.UUID) (*models.Property, error) {
	p, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	if p.LandlordID != landlordID {
		return nil, utils.ErrPermissionDenied
	}
	return p, nil
}

func (s *PropertyService) ListMine(ctx context.Context, landlordID uuid.UUID) ([]*models.Property, error) {
	return s.propRepo.ListByLandlordID(ctx, landlordID)
}

// OwnedDetail is the landlord's view of one of their units: the
// property with its gallery, no contact block.
func (s *PropertyService) OwnedDetail(ctx context.Context, landlordID, propertyID uuid.UUID) (*dtos.PropertyDetail, error) {
	p, err := s.GetOwned(ctx, landlordID, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	imgs, err := s.imageRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	images := make([]dtos.PropertyImage, 0, len(imgs))
	for _, img := range imgs {
		images = append(images, dtos.NewPropertyImageFromModel(*img))
	}

	return &dtos.PropertyDetail{
		Property: dtos.NewPropertyFromModel(*p),
		Images:   images,
	}, nil
}

// ---------------------------------------------------------------------
// Public marketplace
// ---------------------------------------------------------------------

func (s *PropertyService) Marketplace(
	ctx context.Context,
	f repositories.MarketplaceFilter,
	page int,
	size int,
) (*dtos.MarketplacePage, error) {

	f.Limit = size
	f.Offset = (page - 1) * size

	items, total, err := s.propRepo.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	results := make([]dtos.Property, 0, len(items))
	for _, p := range items {
		results = append(results, dtos.NewPropertyFromModel(*p))
	}

	return &dtos.MarketplacePage{
		Items: results,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

// MarketplaceDetail is the public listing page: property, gallery and
// the landlord contact subset.
func (s *PropertyService) MarketplaceDetail(ctx context.Context, propertyID uuid.UUID) (*dtos.PropertyDetail, error) {
	p, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	imgs, err := s.imageRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	images := make([]dtos.PropertyImage, 0, len(imgs))
	for _, img := range imgs {
		images = append(images, dtos.NewPropertyImageFromModel(*img))
	}

	landlord, err := s.userRepo.GetByID(ctx, p.LandlordID)
	if err != nil || landlord == nil {
		utils.Logger.WithError(err).Errorf("listing %s has no landlord row", propertyID)
		return nil, fmt.Errorf("landlord not found for listing %s", propertyID)
	}

	contact := dtos.NewLandlordContactFromModel(*landlord)
	return &dtos.PropertyDetail{
		Property: dtos.NewPropertyFromModel(*p),
		Images:   images,
		Landlord: &contact,
	}, nil
}

// ---------------------------------------------------------------------
// Gallery
// ---------------------------------------------------------------------

func (s *PropertyService) AddImage(
	ctx context.Context,
	landlordID uuid.UUID,
	propertyID uuid.UUID,
	req dtos.AddPropertyImageRequest,
) (*models.PropertyImage, error) {

	p, err := s.GetOwned(ctx, landlordID, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	existing, err := s.imageRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	img := &models.PropertyImage{
		ID:         uuid.New(),
		PropertyID: propertyID,
		ImageURL:   req.ImageURL,
		Caption:    req.Caption,
		Position:   len(existing),
	}
	if err := s.imageRepo.Create(ctx, img); err != nil {
		return nil, err
	}
	return s.imageRepo.GetByID(ctx, img.ID)
}

func (s *PropertyService) DeleteImage(ctx context.Context, landlordID, propertyID, imageID uuid.UUID) error {
	p, err := s.GetOwned(ctx, landlordID, propertyID)
	if err != nil {
		return err
	}
	if p == nil {
		return pgx.ErrNoRows
	}

	img, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img == nil || img.PropertyID != propertyID {
		return pgx.ErrNoRows
	}
	return s.imageRepo.Delete(ctx, imageID)
}

// checkShortletWindow enforces the check-in/check-out pair on shortlet
// listings.
func checkShortletWindow(listing models.ListingType, start, end *time.Time) error {
	if listing != models.ListingShortlet {
		return nil
	}
	if start == nil || end == nil {
		return utils.ErrInvalidDateRange
	}
	if end.Before(*start) {
		return utils.ErrInvalidDateRange
	}
	return nil
}
