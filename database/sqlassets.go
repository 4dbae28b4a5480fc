package sqlassets

import _ "embed"

//go:embed schema/tenants.sql
var TenantsSQL string

//go:embed schema/catalog.sql
var CatalogSQL string

//go:embed schema/progress.sql
var ProgressSQL string

// All returns the schema assets in dependency order (tenants first, progress last).
func All() []string {
	return []string{TenantsSQL, CatalogSQL, ProgressSQL}
}
