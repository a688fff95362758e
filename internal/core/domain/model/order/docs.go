// Package order holds the fulfillment Order aggregate, its items and the status machine.
//
// An order arrives from Central in New status. The tenant answers per item, either with a
// fulfilled quantity or with a rejection reason, and the order status follows from those
// answers: Rejected when every item is rejected, Preparing otherwise. Completion is the only
// explicit transition and it never touches the revenue priced at decision time.
package order
