package chat

// Intent is a parsed user command. The set of implementations is closed.
type Intent interface {
	isIntent()
}

// JoinGroup asks the substrate to join a group.
type JoinGroup struct{ Group string }

// LeaveGroup asks the substrate to leave a group.
type LeaveGroup struct{ Group string }

// SwitchGroup makes Group the destination of plain text.
type SwitchGroup struct{ Group string }

// SwitchPeer makes the peer called Name the destination of plain text.
type SwitchPeer struct{ Name string }

// Status prints the current destination.
type Status struct{}

// Exit stops the client.
type Exit struct{}

// SendText sends Text to the current destination.
type SendText struct{ Text string }

// ListPeers prints the live peer directory.
type ListPeers struct{}

// ListGroups prints the groups this client has joined.
type ListGroups struct{}

// History prints the last Limit transcript lines from the store.
type History struct{ Limit int }

// Help prints the command summary.
type Help struct{}

// Noop does nothing. A non-empty Notice is shown to the user.
type Noop struct{ Notice string }

func (JoinGroup) isIntent()   {}
func (LeaveGroup) isIntent()  {}
func (SwitchGroup) isIntent() {}
func (SwitchPeer) isIntent()  {}
func (Status) isIntent()      {}
func (Exit) isIntent()        {}
func (SendText) isIntent()    {}
func (ListPeers) isIntent()   {}
func (ListGroups) isIntent()  {}
func (History) isIntent()     {}
func (Help) isIntent()        {}
func (Noop) isIntent()        {}
