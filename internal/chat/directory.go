package chat

import (
	"sort"

	"github.com/samber/lo"
)

// NameResolver looks up a peer's display name. substrate.Node satisfies it.
type NameResolver interface {
	NameOf(peer string) (string, bool)
}

// PeerInfo is a directory entry snapshot.
type PeerInfo struct {
	ID     string
	Name   string
	Groups []string
}

// Directory maps live peer ids to display names.
//
// Entries are created on ENTER and purged on EXIT. The last known name of a departed
// peer is kept apart so a late EXIT can still be rendered, but it is never served by
// NameOf or IDOf.
type Directory struct {
	resolver NameResolver
	names    map[string]string
	groups   map[string]map[string]struct{}
	departed map[string]string
}

// NewDirectory builds an empty directory backed by resolver.
func NewDirectory(resolver NameResolver) *Directory {
	return &Directory{
		resolver: resolver,
		names:    make(map[string]string),
		groups:   make(map[string]map[string]struct{}),
		departed: make(map[string]string),
	}
}

// Enter records peer under the name the substrate reports.
func (d *Directory) Enter(peer string) (string, bool) {
	name, ok := d.resolver.NameOf(peer)
	if !ok {
		return "", false
	}
	d.names[peer] = name
	delete(d.departed, peer)
	return name, true
}

// Exit invalidates peer and returns its last known name.
func (d *Directory) Exit(peer string) (string, bool) {
	name, ok := d.names[peer]
	if !ok {
		name, ok = d.departed[peer]
		return name, ok
	}
	delete(d.names, peer)
	delete(d.groups, peer)
	d.departed[peer] = name
	return name, true
}

// NameOf returns the display name of a live peer. A peer that the substrate knows but
// whose ENTER has not been seen yet is resolved through the substrate and recorded.
func (d *Directory) NameOf(peer string) (string, bool) {
	if name, ok := d.names[peer]; ok {
		return name, true
	}
	if _, gone := d.departed[peer]; gone {
		return "", false
	}
	return d.Enter(peer)
}

// IDOf finds the id of a live peer by display name. With duplicate names any match wins.
func (d *Directory) IDOf(name string) (string, bool) {
	return lo.FindKey(d.names, name)
}

// Joined records that peer joined group.
func (d *Directory) Joined(peer, group string) {
	if _, ok := d.names[peer]; !ok {
		return
	}
	set, ok := d.groups[peer]
	if !ok {
		set = make(map[string]struct{})
		d.groups[peer] = set
	}
	set[group] = struct{}{}
}

// Left records that peer left group.
func (d *Directory) Left(peer, group string) {
	delete(d.groups[peer], group)
}

// Len returns the number of live peers.
func (d *Directory) Len() int {
	return len(d.names)
}

// Peers returns live peers ordered by name, then id.
func (d *Directory) Peers() []PeerInfo {
	peers := lo.MapToSlice(d.names, func(id, name string) PeerInfo {
		groups := lo.Keys(d.groups[id])
		sort.Strings(groups)
		return PeerInfo{ID: id, Name: name, Groups: groups}
	})
	sort.Slice(peers, func(i, j int) bool {
		if peers[i].Name != peers[j].Name {
			return peers[i].Name < peers[j].Name
		}
		return peers[i].ID < peers[j].ID
	})
	return peers
}
