package gobwire

import (
	"io"

	"github.com/sirupsen/logrus"
)

// pendingDef is one not-yet-flushed type-definition section, queued by
// Register and drained by WritePending before the value that needs it
// goes out (§4.4 "definition precedes use").
type pendingDef struct {
	id  TypeID
	rec wireTypeRecord
}

// Registry is the encoder-side type table (§4.4): it mints ids for newly
// registered types, deduplicates structurally identical registrations via
// a fingerprint index, and queues the WireType records that describe each
// new id until the caller flushes them to the wire.
type Registry struct {
	nextID  TypeID
	byID    map[TypeID]Type
	byFP    map[string]TypeID
	pending []pendingDef
	log     *logrus.Logger
}

// NewRegistry builds an encoder-side Registry, pre-seeded with the builtin
// schema ids 16-23 (§4.5) so a stream's very first type definition can
// already be framed against the WIRE_TYPE id.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		nextID: FirstUserTypeID,
		byID:   map[TypeID]Type{},
		byFP:   map[string]TypeID{},
		log:    discardLogger(),
	}
	for id, t := range BuiltinWireTypeDefs() {
		r.byID[id] = t
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegistryOption configures a Registry at construction.
type RegistryOption func(*Registry)

// WithLogger injects a structured logger; the default discards all output.
func WithLogger(l *logrus.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// Lookup implements TypeLookup.
func (r *Registry) Lookup(id TypeID) (Type, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Register assigns or reuses an id for t and returns it (§4.4):
//   - Option collapses to its inner type's id without minting anything.
//   - A structurally-identical type already registered is returned as-is
//     (deduplication by fingerprint, computed pre-lowering so Enum shapes
//     dedupe correctly — §4.4, §9).
//   - Enum is lowered to a struct-of-options: one id for the outer struct,
//     plus one additional id per struct-shaped variant (newtype variants
//     reuse the payload's own id, unit variants are rejected). The run of
//     ids is contiguous: the outer struct takes the first, each
//     struct-shaped variant the next in order. Each variant struct is
//     queued as its id is minted and the outer struct last, so the
//     variant definitions reach the wire before the outer one.
func (r *Registry) Register(t Type) (TypeID, error) {
	if t.Kind == KindOption {
		if _, ok := r.byID[t.Inner]; !ok && !isBuiltinPrimitive(t.Inner) {
			return 0, serializeErr("Register: option inner id %d is not registered", t.Inner)
		}
		return t.Inner, nil
	}

	if err := r.validateReferences(t); err != nil {
		return 0, err
	}

	if t.Kind == KindEnum {
		return r.registerEnum(t)
	}

	fp := t.fingerprint()
	if id, ok := r.byFP[fp]; ok {
		r.log.WithFields(logrus.Fields{"id": id, "kind": t.Kind.String()}).Debug("register: structural dedup hit")
		return id, nil
	}

	id := r.nextID
	r.nextID++
	if err := r.commit(id, t, fp); err != nil {
		return 0, err
	}
	return id, nil
}

// validateReferences checks invariant 1 (§3): every TypeID a composite
// refers to must already be known, either builtin or previously
// registered — a type can never reference an id from its own future.
func (r *Registry) validateReferences(t Type) error {
	check := func(id TypeID) error {
		if isBuiltinPrimitive(id) {
			return nil
		}
		if _, ok := r.byID[id]; !ok {
			return serializeErr("Register: referenced type id %d is not registered", id)
		}
		return nil
	}
	switch t.Kind {
	case KindSeq:
		return check(t.Elem)
	case KindMap:
		if err := check(t.Key); err != nil {
			return err
		}
		return check(t.Val)
	case KindStruct:
		for _, f := range t.Fields {
			if err := check(f.Type); err != nil {
				return err
			}
		}
	case KindEnum:
		for _, v := range t.Variants {
			if v.isUnit() {
				return serializeErr("Register: enum %q variant %q is a unit variant, which cannot be represented", t.Name, v.Name)
			}
			if v.Newtype != nil {
				if err := check(*v.Newtype); err != nil {
					return err
				}
			}
			for _, f := range v.Fields {
				if err := check(f.Type); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// registerEnum implements the lowering described on NewEnumType/§4.5/§9:
// the fingerprint is taken over the abstract (pre-lowering) shape so two
// separately-registered, structurally-identical enums still collapse.
func (r *Registry) registerEnum(t Type) (TypeID, error) {
	fp := t.fingerprint()
	if id, ok := r.byFP[fp]; ok {
		r.log.WithFields(logrus.Fields{"id": id}).Debug("register: enum structural dedup hit")
		return id, nil
	}

	outerID := r.nextID
	r.nextID++

	outerFields := make([]Field, len(t.Variants))
	for i, v := range t.Variants {
		switch {
		case v.Newtype != nil:
			outerFields[i] = Field{Name: v.Name, Type: *v.Newtype}
		case v.isStructShaped():
			subID := r.nextID
			r.nextID++
			sub := Type{Kind: KindStruct, Name: t.Name + "_" + v.Name, Fields: v.Fields}
			if err := r.commit(subID, sub, sub.fingerprint()); err != nil {
				return 0, err
			}
			outerFields[i] = Field{Name: v.Name, Type: subID}
		}
	}

	outer := Type{Kind: KindStruct, Name: t.Name, Fields: outerFields}
	if err := r.commit(outerID, outer, fp); err != nil {
		return 0, err
	}
	return outerID, nil
}

// commit stores t under id, indexes it by fp for future dedup lookups, and
// queues its WireType record for the next WritePending flush.
func (r *Registry) commit(id TypeID, t Type, fp string) error {
	rec, err := translateToWireType(id, t)
	if err != nil {
		return err
	}
	r.byID[id] = t
	r.byFP[fp] = id
	r.pending = append(r.pending, pendingDef{id: id, rec: rec})
	r.log.WithFields(logrus.Fields{"id": id, "kind": t.Kind.String(), "name": t.Name}).Debug("register: minted new id")
	return nil
}

// WritePending flushes every type definition queued since the last call,
// each as its own section tagged with the negative of its id (§4.2, §4.4).
// Callers must invoke this before writing any value section that might
// depend on a just-minted id — SerializeValue does this automatically.
func (r *Registry) WritePending(w io.Writer) error {
	for len(r.pending) > 0 {
		def := r.pending[0]
		r.pending = r.pending[1:]

		buf := NewBufferFromPool()
		if err := encodeWireType(buf, def.rec); err != nil {
			buf.ReturnToPool()
			return err
		}
		err := WriteSection(w, -def.id, buf.Bytes)
		buf.ReturnToPool()
		if err != nil {
			return err
		}
	}
	return nil
}

// DecoderRegistry is the decoder-side type table (§4.4): it absorbs
// incoming type-definition sections and answers Lookup for whatever the
// stream has defined so far, plus the pre-seeded builtins.
type DecoderRegistry struct {
	byID map[TypeID]Type
	log  *logrus.Logger
}

// NewDecoderRegistry builds a decoder-side registry, pre-seeded the same
// way as NewRegistry.
func NewDecoderRegistry(opts ...DecoderRegistryOption) *DecoderRegistry {
	d := &DecoderRegistry{byID: map[TypeID]Type{}, log: discardLogger()}
	for id, t := range BuiltinWireTypeDefs() {
		d.byID[id] = t
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecoderRegistryOption configures a DecoderRegistry at construction.
type DecoderRegistryOption func(*DecoderRegistry)

// WithDecoderLogger injects a structured logger.
func WithDecoderLogger(l *logrus.Logger) DecoderRegistryOption {
	return func(d *DecoderRegistry) { d.log = l }
}

// Lookup implements TypeLookup.
func (d *DecoderRegistry) Lookup(id TypeID) (Type, bool) {
	t, ok := d.byID[id]
	return t, ok
}

// Absorb parses a type-definition section's payload (for id = -section.TypeID)
// and records it (§4.4, §8 property: "decoder must record it before any
// value referencing it is parsed").
func (d *DecoderRegistry) Absorb(section *SectionHeader) error {
	if !section.IsTypeDef() {
		return deserializeErr("Absorb: section %d is not a type definition", section.TypeID)
	}
	id := -section.TypeID
	if id == 0 {
		return deserializeErr("Absorb: type tag 0 is illegal")
	}

	c := NewCursor(section.Payload)
	rec, err := decodeWireType(&c)
	if err != nil {
		return err
	}
	recID, t, err := typeFromWireType(rec)
	if err != nil {
		return err
	}
	if recID != id {
		return deserializeErr("Absorb: section announced id %d but record names id %d", id, recID)
	}

	if err := d.validateReferences(t); err != nil {
		return err
	}

	d.byID[id] = t
	d.log.WithFields(logrus.Fields{"id": id, "kind": t.Kind.String(), "name": t.Name}).Debug("absorb: type definition recorded")
	return nil
}

// validateReferences mirrors Registry.validateReferences on the decode
// side: a definition may only reference ids already known (builtin or
// previously absorbed).
func (d *DecoderRegistry) validateReferences(t Type) error {
	check := func(id TypeID) error {
		if isBuiltinPrimitive(id) {
			return nil
		}
		if _, ok := d.byID[id]; !ok {
			return deserializeErr("type definition references unknown id %d", id)
		}
		return nil
	}
	switch t.Kind {
	case KindSeq:
		return check(t.Elem)
	case KindMap:
		if err := check(t.Key); err != nil {
			return err
		}
		return check(t.Val)
	case KindStruct:
		for _, f := range t.Fields {
			if err := check(f.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

// discardLogger returns a *logrus.Logger whose output goes nowhere, used
// as the default when no logger is injected (SPEC_FULL.md §2.2).
func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
