package comm

import "sync"

// PacketHandler is called when a valid packet is received on a channel.
// payload refers to the receive buffer and is only valid during the call.
type PacketHandler interface {
	HandlePacket(ch Channel, payload []byte)
}

// HandlePacketFunc is func type of PacketHandler.
type HandlePacketFunc func(Channel, []byte)

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ch Channel, payload []byte) {
	f(ch, payload)
}

// Registry maps channels to handlers.
type Registry struct {
	handlers [MaxChannels]PacketHandler
	lock     sync.RWMutex
}

// Reset clears all handlers.
func (r *Registry) Reset() {
	r.lock.Lock()
	r.handlers = [MaxChannels]PacketHandler{}
	r.lock.Unlock()
}

// Set replaces the handler of a channel.
func (r *Registry) Set(ch Channel, h PacketHandler) {
	r.lock.Lock()
	r.handlers[ch.Masked()] = h
	r.lock.Unlock()
}

// Clear removes the handler of a channel.
func (r *Registry) Clear(ch Channel) {
	r.Set(ch, nil)
}

// Get gets the handler of a channel, nil if unset.
func (r *Registry) Get(ch Channel) PacketHandler {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.handlers[ch.Masked()]
}
