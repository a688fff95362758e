// Package kernel provides the value objects shared by the fulfillment domain.
//
// The package includes:
//   - UUID: identifier for connections, queued relays and ledger entries
//   - Quantity: an amount with a unit ("1.5kg", "500g", "3pcs")
//   - OrderKey: tenant id plus order number, the address of an order in every store
//
// All values are immutable and safe to share between goroutines.
package kernel
