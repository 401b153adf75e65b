package core

// Group is a named shout channel on the relay.
type Group struct {
	Name    string
	clients map[*Client]struct{}
}

// NewGroup constructs a group with no members.
func NewGroup(name string) *Group {
	return &Group{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the group. Returns true if newly added.
func (g *Group) AddClient(c *Client) bool {
	if _, exists := g.clients[c]; exists {
		return false
	}
	g.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the group. Returns true if removed.
func (g *Group) RemoveClient(c *Client) bool {
	if _, exists := g.clients[c]; !exists {
		return false
	}
	delete(g.clients, c)
	return true
}

// Broadcast sends an event to every member except skip.
func (g *Group) Broadcast(event *Event, skip *Client) {
	for client := range g.clients {
		if client == skip {
			continue
		}
		client.send(event)
	}
}

// Empty returns true if no clients are in the group.
func (g *Group) Empty() bool {
	return len(g.clients) == 0
}
