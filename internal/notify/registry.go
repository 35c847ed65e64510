package notify

// Registry is a simple map-based SenderRegistry.
type Registry struct {
	senders map[string]Sender
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[string]Sender),
	}
}

// Register adds a sender under its channel name.
func (r *Registry) Register(s Sender) {
	r.senders[s.Channel()] = s
}

// Get returns the sender for the given channel, or false if not registered.
func (r *Registry) Get(channel string) (Sender, bool) {
	s, ok := r.senders[channel]
	return s, ok
}

// Channels lists the registered channel names.
func (r *Registry) Channels() []string {
	out := make([]string, 0, len(r.senders))
	for name := range r.senders {
		out = append(out, name)
	}
	return out
}
