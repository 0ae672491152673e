package order

// CommitSubscriber is invoked synchronously after an order's terminal commit.
// Subscribers are registered at construction; there is no ambient event bus.
type CommitSubscriber func(*Order)
