package ecad

// Net is a named electrical connection. Conductors join a net by carrying
// its id.
type Net struct {
	suuid Suuid
	name  string
	id    NetID
}

func (n *Net) Suuid() Suuid { return n.suuid }
func (n *Net) Name() string { return n.name }
func (n *Net) ID() NetID    { return n.id }
