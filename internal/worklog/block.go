package worklog

// Fields assigned by the remote service that must not appear in creation
// payloads.
var readOnlyFields = map[string]struct{}{
	"id":               {},
	"created_time":     {},
	"last_edited_time": {},
	"created_by":       {},
	"last_edited_by":   {},
	"has_children":     {},
	"archived":         {},
	"parent":           {},
}

// Kinds that carry no payload at all.
var emptyKinds = map[string]struct{}{
	"divider":           {},
	"breadcrumb":        {},
	"table_of_contents": {},
}

// Kinds the remote service cannot recreate from a read payload.
var uncopyableKinds = map[string]struct{}{
	"link_preview": {},
	"unsupported":  {},
}

// CleanForCopy strips read-only fields from a block, producing a spec the
// remote service will accept for creation. The second return value is false
// for kinds that cannot be recreated this way: child pages and child
// databases (handled separately by the copy engine) and kinds the service
// refuses to accept in a creation payload.
func CleanForCopy(b Block) (BlockSpec, bool) {
	if b.Type == "" || b.Type == BlockChildPage || b.Type == BlockChildDatabase {
		return BlockSpec{}, false
	}
	if _, ok := uncopyableKinds[b.Type]; ok {
		return BlockSpec{}, false
	}

	spec := BlockSpec{Type: b.Type, Fields: map[string]any{}}
	if _, ok := emptyKinds[b.Type]; ok {
		return spec, true
	}

	for key, value := range b.Fields {
		if _, ok := readOnlyFields[key]; ok {
			continue
		}
		spec.Fields[key] = value
	}
	return spec, true
}
