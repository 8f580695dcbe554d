package gateway

// Client is one live connection as seen by the gateway. Events is drained by
// the transport's write loop; the rooms set is only touched under the
// gateway's lock.
type Client struct {
	ID     string
	Events chan *Event
	rooms  map[string]struct{}
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan *Event, 16),
		rooms:  make(map[string]struct{}),
	}
}
