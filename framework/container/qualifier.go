package container

// QualifiedBuilder implements the fluent API for named instance slots.
//
//	c.Qualify("primary").Give(primaryDB)
//	c.Qualify("replica").Give(replicaDB)
//	db, ok := container.GetQualified[*sql.DB](c, "replica")
type QualifiedBuilder struct {
	container *Container
	qualifier string
}

// Qualify starts a qualified registration.
func (c *Container) Qualify(qualifier string) *QualifiedBuilder {
	return &QualifiedBuilder{container: c, qualifier: qualifier}
}

// Give stores instance under its dynamic type and the builder's qualifier.
func (b *QualifiedBuilder) Give(instance any) {
	b.container.store.RegisterQualified(b.qualifier, instance)
}

// GiveAs stores instance under key and the builder's qualifier.
func (b *QualifiedBuilder) GiveAs(key TypeKey, instance any) {
	if key.IsZero() || instance == nil {
		return
	}
	b.container.store.put(Descriptor{Type: key, Qualifier: b.qualifier}, instance)
}
