package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

const currentEnvelopeVersion = 1

// DomainEvent is what services hand to Emit. AggregateType may be left empty
// and is then taken from the event type.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

// Emitter is the write side used by services inside their transactions.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error
}

type Service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, now: time.Now}
}

// Emit stores the event in the caller's transaction so it commits or rolls
// back with the state change it describes.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "outbox emit requires a transaction")
	}
	if err := normalize(&event, s.now); err != nil {
		return err
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode outbox event data")
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode outbox envelope")
	}

	row := models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       json.RawMessage(payload),
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert outbox event")
	}

	if s.logg != nil && ctx != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"event_id":     envelope.EventID,
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		}), "outbox event queued")
	}
	return nil
}

func normalize(event *DomainEvent, now func() time.Time) error {
	expected := event.EventType.Aggregate()
	if expected == "" {
		return pkgerrors.Newf(pkgerrors.CodeInternal, "unknown outbox event type %q", event.EventType)
	}
	if event.AggregateType == "" {
		event.AggregateType = expected
	}
	if event.AggregateType != expected {
		return pkgerrors.Newf(pkgerrors.CodeInternal, "event %s belongs to %s aggregates, got %q", event.EventType, expected, event.AggregateType)
	}
	if event.AggregateID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "outbox event requires an aggregate id")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now().UTC()
	}
	if event.Version == 0 {
		event.Version = currentEnvelopeVersion
	}
	return nil
}
