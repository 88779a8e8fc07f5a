package memory

import (
	"fmt"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

type foreignKey struct {
	column string
	parent domain.Table
}

// foreignKeys matches the REFERENCES clauses of the SQL schema. A nil column
// value is a NULL reference and always passes.
var foreignKeys = map[domain.Table][]foreignKey{
	domain.TableAppointments: {
		{column: "customer_id", parent: domain.TableCustomers},
		{column: "service_id", parent: domain.TableServices},
		{column: "staff_id", parent: domain.TableStaff},
	},
	domain.TableSales: {
		{column: "customer_id", parent: domain.TableCustomers},
		{column: "staff_id", parent: domain.TableStaff},
	},
	domain.TableSaleItems: {
		{column: "sale_id", parent: domain.TableSales},
	},
	domain.TableTreatments: {
		{column: "customer_id", parent: domain.TableCustomers},
		{column: "service_id", parent: domain.TableServices},
		{column: "staff_id", parent: domain.TableStaff},
	},
}

// checkReferences fails when row points at a missing parent. Callers hold mu.
func (s *Store) checkReferences(row domain.Record) error {
	for _, fk := range foreignKeys[row.Table()] {
		v, _ := row.Field(fk.column)
		id, ok := v.(string)
		if !ok || id == "" {
			continue
		}
		if indexOf(s.tables[fk.parent], id) < 0 {
			return fmt.Errorf("%w: %s.%s references missing %s %s", store.ErrConflict, row.Table(), fk.column, fk.parent, id)
		}
	}
	return nil
}

// checkReferenced fails when a row of another table still points at id.
// Callers hold mu.
func (s *Store) checkReferenced(table domain.Table, id string) error {
	for child, keys := range foreignKeys {
		for _, fk := range keys {
			if fk.parent != table {
				continue
			}
			for _, row := range s.tables[child] {
				if v, _ := row.Field(fk.column); v == id {
					return fmt.Errorf("%w: %s %s is still referenced by %s", store.ErrConflict, table, id, child)
				}
			}
		}
	}
	return nil
}
