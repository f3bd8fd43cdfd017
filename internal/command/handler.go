package command

import (
	"time"

	"github.com/danmuck/slotbox/internal/logging"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/persist"
	"github.com/danmuck/slotbox/internal/stream"
)

// Observer is notified after each dispatched request.
type Observer func(op Opcode, st object.Status, elapsed time.Duration)

// Handler executes the command set against one box's object tree and
// profile store. It is not safe for concurrent use; the box serializes
// every dispatch.
type Handler struct {
	system object.Container
	root   object.OpenContainer
	reg    *object.Registry
	store  *persist.Store
	obs    Observer
}

func NewHandler(system object.Container, root object.OpenContainer, reg *object.Registry, store *persist.Store) *Handler {
	return &Handler{system: system, root: root, reg: reg, store: store}
}

// Observe installs fn as the dispatch observer. Call before serving.
func (h *Handler) Observe(fn Observer) {
	h.obs = fn
}

// Dispatch runs one request from in and writes the response to out:
// the request opcode, a status byte, then any op-specific payload.
// Malformed input yields an error status, never a panic. Bytes left on
// in after the request are the framing layer's to discard.
func (h *Handler) Dispatch(in stream.DataIn, out stream.DataOut) object.Status {
	start := time.Now()
	if !in.HasNext() {
		out.Put(0)
		out.Put(byte(object.StatusUnknownCommand))
		h.observe(0, object.StatusUnknownCommand, start)
		return object.StatusUnknownCommand
	}
	op := Opcode(in.Next())
	out.Put(byte(op))
	st := h.exec(op, in, out)
	logging.Debugf("command.Handler.Dispatch op=%q status=%q", op, st)
	h.observe(op, st, start)
	return st
}

func (h *Handler) observe(op Opcode, st object.Status, start time.Time) {
	if h.obs != nil {
		h.obs(op, st, time.Since(start))
	}
}

func (h *Handler) exec(op Opcode, in stream.DataIn, out stream.DataOut) object.Status {
	switch op {
	case OpReadValue:
		return h.readValue(h.root, in, out)
	case OpSetValue:
		return h.setValue(h.root, in, out)
	case OpCreateObject:
		return h.createObject(in, out)
	case OpDeleteObject:
		return h.deleteObject(in, out)
	case OpListObjects:
		return h.listObjects(out)
	case OpNextFreeSlot:
		return h.nextFreeSlot(in, out)
	case OpCreateProfile:
		return h.createProfile(out)
	case OpDeleteProfile:
		return h.deleteProfile(in, out)
	case OpActivateProfile:
		return h.activateProfile(in, out)
	case OpLogValues:
		return h.logValues(out)
	case OpReset:
		return h.reset(in, out)
	case OpNextFreeSlotRoot:
		return putFreeSlot(out, h.root.Next())
	case OpListProfiles:
		return h.listProfiles(out)
	case OpReadSystemValue:
		return h.readValue(h.system, in, out)
	case OpSetSystemValue:
		return h.setValue(h.system, in, out)
	default:
		return reply(out, object.StatusUnknownCommand)
	}
}

// reply writes st as the next response byte and returns it.
func reply(out stream.DataOut, st object.Status) object.Status {
	out.Put(byte(st))
	return st
}

func (h *Handler) readValue(root object.Container, in stream.DataIn, out stream.DataOut) object.Status {
	hd := object.LookupObject(root, in)
	if hd == nil {
		return reply(out, object.StatusInvalidChain)
	}
	defer hd.Release()

	v, ok := hd.Object().(object.Value)
	if !ok || !object.IsValue(hd.Object()) {
		return reply(out, object.StatusInvalidType)
	}
	p, st := object.ReadValue(v)
	if !st.OK() {
		return reply(out, st)
	}
	reply(out, object.StatusOK)
	out.Put(byte(len(p)))
	out.Write(p)
	return object.StatusOK
}

func (h *Handler) setValue(root object.Container, in stream.DataIn, out stream.DataOut) object.Status {
	hd := object.LookupObject(root, in)
	if hd == nil {
		return reply(out, object.StatusInvalidChain)
	}
	defer hd.Release()

	obj := hd.Object()
	if !object.IsValue(obj) {
		return reply(out, object.StatusInvalidType)
	}
	w, ok := obj.(object.WritableValue)
	if !ok || !object.IsWritableValue(obj) {
		return reply(out, object.StatusNotWritable)
	}
	if !in.HasNext() {
		return reply(out, object.StatusStreamError)
	}
	n := in.Next()
	p := make([]byte, n)
	if !stream.ReadBytes(in, p) {
		return reply(out, object.StatusStreamError)
	}
	if n != w.WriteStreamSize() {
		return reply(out, object.StatusInvalidSize)
	}
	if st := w.WriteFrom(stream.NewBufferIn(p)); !st.OK() {
		return reply(out, st)
	}

	// Echo the value back so the caller sees what the object actually
	// latched.
	rb, st := object.ReadValue(w)
	if !st.OK() {
		return reply(out, st)
	}
	reply(out, object.StatusOK)
	out.Put(byte(len(rb)))
	out.Write(rb)
	return object.StatusOK
}

func (h *Handler) createObject(in stream.DataIn, out stream.DataOut) object.Status {
	active := h.store.Active()
	if active == persist.NoProfile {
		return reply(out, object.StatusNoActiveProfile)
	}
	chain, ok := object.DecodeChain(in)
	if !ok {
		return reply(out, object.StatusInvalidChain)
	}
	if !in.HasNext() {
		return reply(out, object.StatusStreamError)
	}
	typ := object.TypeID(in.Next())
	if !in.HasNext() {
		return reply(out, object.StatusStreamError)
	}
	n := in.Next()
	payload := make([]byte, n)
	if !stream.ReadBytes(in, payload) {
		return reply(out, object.StatusStreamError)
	}

	ch := object.LookupContainer(h.root, chainIn(chain))
	if ch == nil {
		return reply(out, object.StatusInvalidChain)
	}
	defer ch.Release()

	parent, ok := ch.Container().(object.OpenContainer)
	if !ok || !object.IsOpenContainer(ch.Container()) {
		return reply(out, object.StatusNotOpenContainer)
	}

	// Creating over an occupied slot replaces it. The old subtree's
	// records go first so replay never sees two live definitions for
	// one chain.
	if old := parent.Item(ch.Slot()); old != nil {
		parent.ReturnItem(ch.Slot(), old)
		if st := h.disposeSubtree(active, chain); !st.OK() {
			return reply(out, st)
		}
		parent.Remove(ch.Slot())
	}

	addr, st := h.store.AppendRecord(active, chain, typ, payload)
	if !st.OK() {
		return reply(out, st)
	}
	obj, st := h.reg.Create(&object.Definition{
		Type: typ,
		Len:  n,
		In:   stream.NewBufferIn(payload),
	})
	if !st.OK() {
		// A record that never built must not replay either.
		h.store.DisposeRecord(active, chain)
		return reply(out, st)
	}
	obj.Rehydrated(addr)
	if !parent.Add(ch.Slot(), obj) {
		h.store.DisposeRecord(active, chain)
		return reply(out, object.StatusContainerFull)
	}
	return reply(out, object.StatusOK)
}

func (h *Handler) deleteObject(in stream.DataIn, out stream.DataOut) object.Status {
	active := h.store.Active()
	if active == persist.NoProfile {
		return reply(out, object.StatusNoActiveProfile)
	}
	chain, ok := object.DecodeChain(in)
	if !ok {
		return reply(out, object.StatusInvalidChain)
	}
	ch := object.LookupContainer(h.root, chainIn(chain))
	if ch == nil {
		return reply(out, object.StatusInvalidChain)
	}
	defer ch.Release()

	parent, ok := ch.Container().(object.OpenContainer)
	if !ok || !object.IsOpenContainer(ch.Container()) {
		return reply(out, object.StatusNotOpenContainer)
	}
	obj := parent.Item(ch.Slot())
	if obj == nil {
		return reply(out, object.StatusInvalidChain)
	}
	parent.ReturnItem(ch.Slot(), obj)

	// Dropping a container takes its descendants' records with it;
	// their chains would dangle otherwise.
	if st := h.disposeSubtree(active, chain); !st.OK() {
		return reply(out, st)
	}
	parent.Remove(ch.Slot())
	return reply(out, object.StatusOK)
}

func (h *Handler) listObjects(out stream.DataOut) object.Status {
	active := h.store.Active()
	if active == persist.NoProfile {
		return reply(out, object.StatusNoActiveProfile)
	}
	recs, st := h.store.Records(active)
	if !st.OK() {
		return reply(out, st)
	}
	reply(out, object.StatusOK)
	for _, rec := range recs {
		out.Put(persist.CmdCreateObject)
		object.EncodeChain(rec.Chain, out)
		out.Put(byte(rec.Type))
		out.Put(byte(len(rec.Payload)))
		out.Write(rec.Payload)
	}
	return object.StatusOK
}

func (h *Handler) nextFreeSlot(in stream.DataIn, out stream.DataOut) object.Status {
	hd := object.LookupObject(h.root, in)
	if hd == nil {
		return reply(out, object.StatusInvalidChain)
	}
	defer hd.Release()

	oc, ok := hd.Object().(object.OpenContainer)
	if !ok || !object.IsOpenContainer(hd.Object()) {
		return reply(out, object.StatusNotOpenContainer)
	}
	return putFreeSlot(out, oc.Next())
}

func putFreeSlot(out stream.DataOut, id object.ID) object.Status {
	if id == object.InvalidID {
		return reply(out, object.StatusContainerFull)
	}
	reply(out, object.StatusOK)
	out.Put(byte(id))
	return object.StatusOK
}

func (h *Handler) createProfile(out stream.DataOut) object.Status {
	id, st := h.store.CreateProfile()
	if !st.OK() {
		return reply(out, st)
	}
	reply(out, object.StatusOK)
	out.Put(byte(id))
	return object.StatusOK
}

func (h *Handler) deleteProfile(in stream.DataIn, out stream.DataOut) object.Status {
	if !in.HasNext() {
		return reply(out, object.StatusStreamError)
	}
	return reply(out, h.store.DeleteProfile(persist.ProfileID(in.Next())))
}

func (h *Handler) activateProfile(in stream.DataIn, out stream.DataOut) object.Status {
	if !in.HasNext() {
		return reply(out, object.StatusStreamError)
	}
	id := persist.ProfileID(in.Next())
	if id < 0 {
		// Activating -1 deactivates; the tree empties with it.
		h.store.Deactivate()
		h.clearTree()
		return reply(out, object.StatusOK)
	}
	if st := h.store.Activate(id); !st.OK() {
		return reply(out, st)
	}
	return reply(out, h.Replay())
}

func (h *Handler) logValues(out stream.DataOut) object.Status {
	reply(out, object.StatusOK)
	object.WalkRoot(h.root, func(o object.Object, chain object.Chain, enter bool) bool {
		if !enter || !object.IsLoggedValue(o) {
			return false
		}
		v, ok := o.(object.Value)
		if !ok {
			return false
		}
		p, st := object.ReadValue(v)
		if !st.OK() {
			return false
		}
		object.EncodeChain(chain, out)
		out.Put(byte(len(p)))
		out.Write(p)
		return false
	})
	return object.StatusOK
}

func (h *Handler) reset(in stream.DataIn, out stream.DataOut) object.Status {
	if !in.HasNext() {
		return reply(out, object.StatusStreamError)
	}
	flags := in.Next()
	h.clearTree()
	if flags&ResetEraseProfiles != 0 {
		h.store.Wipe()
		logging.Infof("command.Handler.reset profiles erased")
		return reply(out, object.StatusOK)
	}
	// Without the erase bit this behaves like a restart: the active
	// profile replays into a fresh tree.
	return reply(out, h.Replay())
}

func (h *Handler) listProfiles(out stream.DataOut) object.Status {
	reply(out, object.StatusOK)
	out.Put(byte(h.store.Active()))
	for _, p := range h.store.ListProfiles() {
		if p.InUse {
			out.Put(byte(p.ID))
		}
	}
	return object.StatusOK
}

// Replay rebuilds the user tree from the active profile's records.
// Boot and activation both come through here. A record that fails to
// rebuild is logged and skipped; one bad definition must not take the
// rest of the profile down with it.
func (h *Handler) Replay() object.Status {
	h.clearTree()
	active := h.store.Active()
	if active == persist.NoProfile {
		return object.StatusOK
	}
	recs, st := h.store.Records(active)
	if !st.OK() {
		return st
	}
	for _, rec := range recs {
		if st := h.replayRecord(rec); !st.OK() {
			logging.Warnf("command.Handler.Replay skipping record chain=%q type=%#x status=%q", rec.Chain, rec.Type, st)
		}
	}
	logging.Infof("command.Handler.Replay profile=%d records=%d", active, len(recs))
	return object.StatusOK
}

// replayRecord rebuilds one object. Records replay in creation order,
// so a parent container always exists before its members.
func (h *Handler) replayRecord(rec persist.Record) object.Status {
	ch := object.LookupContainer(h.root, chainIn(rec.Chain))
	if ch == nil {
		return object.StatusInvalidChain
	}
	defer ch.Release()

	parent, ok := ch.Container().(object.OpenContainer)
	if !ok || !object.IsOpenContainer(ch.Container()) {
		return object.StatusNotOpenContainer
	}
	obj, st := h.reg.Create(&object.Definition{
		Type: rec.Type,
		Len:  uint8(len(rec.Payload)),
		In:   stream.NewBufferIn(rec.Payload),
	})
	if !st.OK() {
		return st
	}
	obj.Rehydrated(rec.Addr)
	if !parent.Add(ch.Slot(), obj) {
		return object.StatusContainerFull
	}
	return object.StatusOK
}

// disposeSubtree disposes the record at chain and every record beneath
// it.
func (h *Handler) disposeSubtree(id persist.ProfileID, chain object.Chain) object.Status {
	recs, st := h.store.Records(id)
	if !st.OK() {
		return st
	}
	for _, rec := range recs {
		if !chainPrefix(chain, rec.Chain) {
			continue
		}
		if st := h.store.DisposeRecord(id, rec.Chain); !st.OK() {
			return st
		}
	}
	return object.StatusOK
}

// chainPrefix reports whether p equals c or is an ancestor of it.
func chainPrefix(p, c object.Chain) bool {
	if len(p) > len(c) {
		return false
	}
	for i, id := range p {
		if c[i] != id {
			return false
		}
	}
	return true
}

func (h *Handler) clearTree() {
	for id := object.ID(0); id < h.root.Size(); id++ {
		h.root.Remove(id)
	}
}

// chainIn renders a decoded chain back to wire form for the resolver.
func chainIn(c object.Chain) stream.DataIn {
	out := stream.NewBufferOut(object.MaxDepth)
	object.EncodeChain(c, out)
	return stream.NewBufferIn(out.Bytes())
}
