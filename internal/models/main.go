package models

// ModelRegistry lists the models managed by --auto-migrate.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
