package relational

// Config selects the relational provider's engine dialect and connection
// target. Driver generalizes a single-dialect database.Connect into the
// four dialects gorm.io's drivers support, since the schema-inference and
// SQL translation logic below is engine-agnostic.
type Config struct {
	// Driver is one of "sqlite", "postgres", "mysql", "sqlserver".
	Driver string
	// DSN is the driver-specific connection string. For sqlite, a file
	// path or ":memory:".
	DSN string
	// ForeignKeys enables the engine's own foreign-key constraint
	// enforcement (spec §4.6); polystore itself never declares FKs since
	// collections have no fixed relations, but sqlite in particular
	// leaves this off by default and some embedders want it on.
	ForeignKeys bool
}
