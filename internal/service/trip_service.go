package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"lazy-tourist-be/internal/dto"
	"lazy-tourist-be/internal/mapper"
	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/internal/pkg/serverutils"
	"lazy-tourist-be/pkg/planner/orchestrator"
	"lazy-tourist-be/pkg/planner/state"

	"github.com/gofiber/fiber/v2"
)

var ErrItineraryNotReady = errors.New("itinerary not compiled yet")

// TripDriver is the part of the orchestrator driver the HTTP layer uses.
type TripDriver interface {
	Start(ctx context.Context, text string) (*state.Session, error)
	Resume(ctx context.Context, id, text string) (*state.Session, error)
	Abort(ctx context.Context, id, reason string) (*state.Session, error)
	Get(ctx context.Context, id string) (*state.Session, error)
}

type ITripService interface {
	Start(ctx context.Context, req *dto.StartTripRequest) (*dto.StartTripResponse, error)
	SendMessage(ctx context.Context, id string, req *dto.SendMessageRequest) (*dto.TripResponse, error)
	Show(ctx context.Context, id string) (*dto.TripResponse, error)
	Itinerary(ctx context.Context, id string) (string, error)
	Abort(ctx context.Context, id string) (*dto.TripResponse, error)
}

type tripService struct {
	driver    TripDriver
	mapper    *mapper.TripMapper
	logger    logger.ILogger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewTripService(driver TripDriver, log logger.ILogger, jwtSecret string, tokenTTL time.Duration) ITripService {
	return &tripService{
		driver:    driver,
		mapper:    mapper.NewTripMapper(),
		logger:    log,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *tripService) Start(ctx context.Context, req *dto.StartTripRequest) (*dto.StartTripResponse, error) {
	session, err := s.driver.Start(ctx, strings.TrimSpace(req.Message))
	if err != nil {
		return nil, toHTTPError(err)
	}

	token, err := serverutils.IssueSessionToken(s.jwtSecret, session.ID, s.tokenTTL)
	if err != nil {
		s.logger.Error("HTTP", "Failed to sign session token", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return nil, err
	}

	return &dto.StartTripResponse{
		TripResponse: *s.mapper.ToResponse(session),
		Token:        token,
	}, nil
}

func (s *tripService) SendMessage(ctx context.Context, id string, req *dto.SendMessageRequest) (*dto.TripResponse, error) {
	session, err := s.driver.Resume(ctx, id, req.Message)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return s.mapper.ToResponse(session), nil
}

func (s *tripService) Show(ctx context.Context, id string) (*dto.TripResponse, error) {
	session, err := s.driver.Get(ctx, id)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return s.mapper.ToResponse(session), nil
}

func (s *tripService) Itinerary(ctx context.Context, id string) (string, error) {
	session, err := s.driver.Get(ctx, id)
	if err != nil {
		return "", toHTTPError(err)
	}
	if session.FinalItinerary == "" {
		return "", fiber.NewError(fiber.StatusConflict, ErrItineraryNotReady.Error())
	}
	return session.FinalItinerary, nil
}

func (s *tripService) Abort(ctx context.Context, id string) (*dto.TripResponse, error) {
	session, err := s.driver.Abort(ctx, id, "aborted by client")
	if err != nil {
		return nil, toHTTPError(err)
	}
	return s.mapper.ToResponse(session), nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, orchestrator.ErrSessionClosed), errors.Is(err, orchestrator.ErrNotSuspended):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, orchestrator.ErrTurnLimit):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}
