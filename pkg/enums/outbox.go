package enums

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
	AggregateQuote OutboxAggregateType = "quote"
)

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateOrder || a == AggregateQuote
}

// OutboxEventType names the event carried by an outbox row. It doubles as
// the suffix of the redis stream the event is relayed to.
type OutboxEventType string

const (
	EventOrderCreated OutboxEventType = "order.created"
	EventQuoteMerged  OutboxEventType = "quote.merged"
)

var eventAggregates = map[OutboxEventType]OutboxAggregateType{
	EventOrderCreated: AggregateOrder,
	EventQuoteMerged:  AggregateQuote,
}

func (e OutboxEventType) IsValid() bool {
	_, ok := eventAggregates[e]
	return ok
}

// Aggregate returns the aggregate type the event is emitted for, or "" for
// unknown events.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	return eventAggregates[e]
}
