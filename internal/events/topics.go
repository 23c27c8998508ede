package events

const (
	TopicOrderRequested = "store.order.requested"
	TopicOrderPlaced    = "store.order.placed"
	TopicOrderRejected  = "store.order.rejected"
)

// Partition key = external_id (or receipt id), so every event of one order
// keeps its order.
func PartitionKey(id string) []byte { return []byte(id) }
