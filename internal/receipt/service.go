package receipt

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles receipt operations
type Service struct {
	db          DB
	pricePolicy PricePolicy
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, policy PricePolicy) *Service {
	return &Service{
		db:          db,
		pricePolicy: policy,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, policy PricePolicy, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		pricePolicy: policy,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ProcessReceipt normalizes a submitted receipt, assigns it an ID and saves it
func (s *Service) ProcessReceipt(receipt *Receipt) (*Receipt, error) {
	if len(receipt.Items) == 0 {
		return nil, validationErr("items", "the receipt must have at least one item")
	}

	if err := NormalizeReceipt(receipt, s.pricePolicy); err != nil {
		return nil, fmt.Errorf("normalizing receipt: %w", err)
	}

	receipt.ID = s.idGenerator.Generate()
	receipt.CreatedAt = s.timeSource.Now()

	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}

	return receipt, nil
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts
func (s *Service) ListReceipts() ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return receipts, nil
}

// GetPoints returns the points awarded for a stored receipt
func (s *Service) GetPoints(id string) (int, error) {
	receipt, err := s.GetReceipt(id)
	if err != nil {
		return 0, err
	}
	return CalculatePoints(receipt), nil
}

// GetBreakdown returns the per-rule points for a stored receipt
func (s *Service) GetBreakdown(id string) (Breakdown, error) {
	receipt, err := s.GetReceipt(id)
	if err != nil {
		return Breakdown{}, err
	}
	return ScorePoints(receipt), nil
}
