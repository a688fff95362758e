// Package services holds domain logic that does not belong to a single aggregate.
//
// The package includes:
//   - RevenueCalculator: prices a tenant decision from fulfilled weights, menu purchase
//     prices and the tenant's commission rate
package services
