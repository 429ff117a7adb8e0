package order

// IDGenerator mints identities for new orders.
type IDGenerator interface {
	NewID() string
}
