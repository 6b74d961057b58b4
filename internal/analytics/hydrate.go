package analytics

import (
	"context"
	"fmt"

	"github.com/vajra-io/vajra/internal/storage"
)

// hydrateCustomerNames resolves display names for ranked customer entries.
// Below the threshold the whole collection is loaded into a lookup map and
// every entry gets a name; at or above it, only the top hydrateTopLimit
// entries get point lookups and the rest keep the "Customer {id}" placeholder.
func (e *Engine) hydrateCustomerNames(
	ctx context.Context,
	store storage.Store,
	entries []RankedEntry,
) error {
	for i := range entries {
		entries[i].Name = fmt.Sprintf("Customer %d", entries[i].ID)
	}

	count, err := store.CountCustomers(ctx)
	if err != nil {
		return err
	}

	if count < e.hydrateAllThreshold {
		names := make(map[int64]string, count)

		err := store.ScanCustomers(ctx, func(c storage.Customer) error {
			names[c.ID] = c.FullName()

			return nil
		})
		if err != nil {
			return err
		}

		for i := range entries {
			if name, ok := names[entries[i].ID]; ok && name != "" {
				entries[i].Name = name
			}
		}

		return nil
	}

	for i := range entries {
		if i >= e.hydrateTopLimit {
			break
		}

		customer, found, err := store.GetCustomer(ctx, entries[i].ID)
		if err != nil {
			return err
		}

		if found && customer.FullName() != "" {
			entries[i].Name = customer.FullName()
		}
	}

	return nil
}

// hydrateProductNames resolves display names for ranked product entries under
// the same two-tier policy, with the "ID {id}" placeholder beyond the limit.
func (e *Engine) hydrateProductNames(
	ctx context.Context,
	store storage.Store,
	entries []RankedEntry,
) error {
	for i := range entries {
		entries[i].Name = fmt.Sprintf("ID %d", entries[i].ID)
	}

	count, err := store.CountProducts(ctx)
	if err != nil {
		return err
	}

	if count < e.hydrateAllThreshold {
		names := make(map[int64]string, count)

		err := store.ScanProducts(ctx, func(p storage.Product) error {
			names[p.ID] = p.Name

			return nil
		})
		if err != nil {
			return err
		}

		for i := range entries {
			if name, ok := names[entries[i].ID]; ok && name != "" {
				entries[i].Name = name
			}
		}

		return nil
	}

	for i := range entries {
		if i >= e.hydrateTopLimit {
			break
		}

		product, found, err := store.GetProduct(ctx, entries[i].ID)
		if err != nil {
			return err
		}

		if found && product.Name != "" {
			entries[i].Name = product.Name
		}
	}

	return nil
}
